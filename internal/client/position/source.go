package position

import (
	"context"
	"math"
	"time"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/pkg/logger"
	wrap "github.com/Zubra14/verista-tracking/pkg/logger/wrapper"
)

// Reading is one raw measurement from a positioning device.
type Reading struct {
	Latitude  float64
	Longitude float64
	SpeedKmh  float64
}

// Sensor abstracts the positioning hardware. Read blocks until a fix is
// available or ctx expires.
type Sensor interface {
	Read(ctx context.Context) (Reading, error)
}

// Source emits one position sample per tick, substituting a fixed
// fallback sample whenever the sensor fails or times out. The sensor is
// retried on every tick, so the source recovers as soon as the device
// does. Callers receive samples over an explicit channel; there is no
// ambient completion callback.
type Source struct {
	sensor   Sensor
	fallback models.Location
	interval time.Duration
	timeout  time.Duration
	log      logger.Logger
}

func NewSource(sensor Sensor, fallback models.Location, interval, timeout time.Duration, log logger.Logger) *Source {
	return &Source{
		sensor:   sensor,
		fallback: fallback,
		interval: interval,
		timeout:  timeout,
		log:      log,
	}
}

// Next produces a single sample. The result always carries finite
// coordinates; a sensor fault yields the fallback position flagged
// is_fallback.
func (s *Source) Next(ctx context.Context) models.PositionSample {
	readCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reading, err := s.sensor.Read(readCtx)
	if err != nil || !finite(reading) {
		if err != nil {
			s.log.Debug(wrap.WithAction(ctx, "position_fallback"),
				"sensor read failed, using fallback position", "err", err.Error())
		}
		return models.PositionSample{
			Latitude:   s.fallback.Latitude,
			Longitude:  s.fallback.Longitude,
			Timestamp:  time.Now().UTC(),
			IsFallback: true,
		}
	}

	return models.PositionSample{
		Latitude:  reading.Latitude,
		Longitude: reading.Longitude,
		SpeedKmh:  reading.SpeedKmh,
		Timestamp: time.Now().UTC(),
	}
}

// Samples emits a sample per interval until ctx is cancelled. The
// channel closes on cancellation.
func (s *Source) Samples(ctx context.Context) <-chan models.PositionSample {
	out := make(chan models.PositionSample)

	go func() {
		defer close(out)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case out <- s.Next(ctx):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// finite guards against devices reporting NaN or infinite coordinates.
func finite(r Reading) bool {
	return !math.IsNaN(r.Latitude) && !math.IsInf(r.Latitude, 0) &&
		!math.IsNaN(r.Longitude) && !math.IsInf(r.Longitude, 0)
}
