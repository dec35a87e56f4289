package models

import (
	"time"

	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PositionSample is one telemetry reading from a driver device. Ephemeral:
// the latest sample overwrites the vehicle's and trip's last known
// position, history is not retained by this service.
type PositionSample struct {
	VehicleID uuid.UUID  `json:"vehicle_id"`
	TripID    *uuid.UUID `json:"trip_id,omitempty"`
	RouteID   *uuid.UUID `json:"route_id,omitempty"`

	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	SpeedKmh  float64   `json:"speed_kmh"`
	Timestamp time.Time `json:"timestamp"`

	// IsFallback marks a synthetic sample produced because the device
	// sensor failed, so consumers never mistake it for real telemetry.
	IsFallback bool `json:"is_fallback"`
}

// TrackedPosition is the last known position persisted on a trip or vehicle.
type TrackedPosition struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	SpeedKmh  float64   `json:"speed_kmh,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
