package main

import (
	"context"
	"errors"
	"flag"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Zubra14/verista-tracking/internal/client/position"
	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/pkg/logger"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

var (
	addr     = flag.String("addr", "ws://localhost:3000/ws/track", "tracking service websocket URL")
	token    = flag.String("token", "", "driver bearer token")
	tripID   = flag.String("trip-id", "", "trip to report positions for (optional)")
	routeID  = flag.String("route-id", "", "route id (optional)")
	interval = flag.Duration("interval", 5*time.Second, "seconds between position samples")
	failRate = flag.Float64("fail-rate", 0.1, "probability of a simulated sensor failure per tick")
	lat      = flag.Float64("lat", -26.1076, "starting latitude")
	lon      = flag.Float64("lon", 28.0567, "starting longitude")
)

// simSensor simulates a GPS device driving a slow random walk. A
// configurable fraction of reads fails to exercise the fallback path.
type simSensor struct {
	rng      *rand.Rand
	lat, lon float64
	failRate float64
}

func (s *simSensor) Read(ctx context.Context) (position.Reading, error) {
	if s.rng.Float64() < s.failRate {
		return position.Reading{}, errors.New("simulated sensor timeout")
	}

	s.lat += (s.rng.Float64() - 0.5) * 0.001
	s.lon += (s.rng.Float64() - 0.5) * 0.001

	return position.Reading{
		Latitude:  s.lat,
		Longitude: s.lon,
		SpeedKmh:  20 + s.rng.Float64()*40,
	}, nil
}

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	log := logger.InitLogger("driversim", logger.LevelDebug)

	if *token == "" {
		log.Error(ctx, "missing required flag", errors.New("-token is required"))
		os.Exit(1)
	}

	var tripUUID, routeUUID *uuid.UUID
	if *tripID != "" {
		id, err := uuid.Parse(*tripID)
		if err != nil {
			log.Error(ctx, "invalid -trip-id", err)
			os.Exit(1)
		}
		tripUUID = &id
	}
	if *routeID != "" {
		id, err := uuid.Parse(*routeID)
		if err != nil {
			log.Error(ctx, "invalid -route-id", err)
			os.Exit(1)
		}
		routeUUID = &id
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+*token)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, *addr, header)
	if err != nil {
		log.Error(ctx, "failed to dial tracking service", err, "addr", *addr)
		os.Exit(1)
	}
	defer conn.Close()

	log.Info(ctx, "connected", "addr", *addr)

	// Drain server frames so control messages are processed.
	go func() {
		for {
			var frame map[string]any
			if err := conn.ReadJSON(&frame); err != nil {
				cancel()
				return
			}
			if frame["type"] == "error" {
				log.Warn(ctx, "server rejected frame", "message", frame["message"])
			}
		}
	}()

	sensor := &simSensor{
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		lat:      *lat,
		lon:      *lon,
		failRate: *failRate,
	}

	fallback := models.Location{Latitude: -26.20, Longitude: 28.04}
	source := position.NewSource(sensor, fallback, *interval, 3*time.Second, log)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdownCh
		cancel()
	}()

	for sample := range source.Samples(ctx) {
		frame := map[string]any{
			"type":      models.EventLocationUpdate,
			"latitude":  sample.Latitude,
			"longitude": sample.Longitude,
			"speed":     sample.SpeedKmh,
		}
		if tripUUID != nil {
			frame["trip_id"] = tripUUID
		}
		if routeUUID != nil {
			frame["route_id"] = routeUUID
		}
		if sample.IsFallback {
			frame["is_fallback"] = true
		}

		if err := conn.WriteJSON(frame); err != nil {
			log.Error(ctx, "failed to send location update", err)
			break
		}

		log.Debug(ctx, "sent location update",
			"lat", sample.Latitude,
			"lon", sample.Longitude,
			"fallback", sample.IsFallback,
		)
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	log.Info(ctx, "driversim stopped")
}
