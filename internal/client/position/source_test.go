package position

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/pkg/logger"
)

type scriptedSensor struct {
	readings []Reading
	errs     []error
	calls    int
}

func (s *scriptedSensor) Read(ctx context.Context) (Reading, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return Reading{}, s.errs[i]
	}
	if i < len(s.readings) {
		return s.readings[i], nil
	}
	return Reading{}, errors.New("no fix")
}

var fallback = models.Location{Latitude: -26.20, Longitude: 28.04}

func newTestSource(sensor Sensor) *Source {
	log := logger.InitLogger("test", logger.LevelError)
	return NewSource(sensor, fallback, 10*time.Millisecond, 50*time.Millisecond, log)
}

func TestNext_HealthySensor(t *testing.T) {
	sensor := &scriptedSensor{readings: []Reading{{Latitude: -26.1, Longitude: 28.05, SpeedKmh: 42}}}
	src := newTestSource(sensor)

	sample := src.Next(context.Background())

	require.False(t, sample.IsFallback)
	require.Equal(t, -26.1, sample.Latitude)
	require.Equal(t, 28.05, sample.Longitude)
	require.Equal(t, 42.0, sample.SpeedKmh)
	require.False(t, sample.Timestamp.IsZero())
}

func TestNext_SensorFailureYieldsFallback(t *testing.T) {
	sensor := &scriptedSensor{errs: []error{errors.New("device unavailable")}}
	src := newTestSource(sensor)

	sample := src.Next(context.Background())

	require.True(t, sample.IsFallback)
	require.Equal(t, fallback.Latitude, sample.Latitude)
	require.Equal(t, fallback.Longitude, sample.Longitude)
}

func TestNext_NonFiniteReadingYieldsFallback(t *testing.T) {
	for _, r := range []Reading{
		{Latitude: math.NaN(), Longitude: 28.04},
		{Latitude: -26.2, Longitude: math.Inf(1)},
	} {
		sensor := &scriptedSensor{readings: []Reading{r}}
		src := newTestSource(sensor)

		sample := src.Next(context.Background())

		require.True(t, sample.IsFallback, "reading %+v must not pass through", r)
		require.False(t, math.IsNaN(sample.Latitude))
		require.False(t, math.IsInf(sample.Longitude, 0))
	}
}

func TestNext_RecoversWhenSensorReturns(t *testing.T) {
	sensor := &scriptedSensor{
		errs:     []error{errors.New("no fix"), nil},
		readings: []Reading{{}, {Latitude: -26.15, Longitude: 28.03, SpeedKmh: 20}},
	}
	src := newTestSource(sensor)

	first := src.Next(context.Background())
	second := src.Next(context.Background())

	require.True(t, first.IsFallback)
	require.False(t, second.IsFallback, "the sensor is retried on every tick")
	require.Equal(t, -26.15, second.Latitude)
}

func TestSamples_ChannelClosesOnCancel(t *testing.T) {
	sensor := &scriptedSensor{readings: []Reading{{Latitude: -26.1, Longitude: 28.05}}}
	src := newTestSource(sensor)

	ctx, cancel := context.WithCancel(context.Background())
	samples := src.Samples(ctx)

	select {
	case sample, ok := <-samples:
		require.True(t, ok)
		require.False(t, sample.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no sample within a second")
	}

	cancel()

	// in-flight samples may race the cancellation; drain until close
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-samples:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel did not close after cancellation")
		}
	}
}
