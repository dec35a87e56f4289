package models

import (
	"time"

	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

// WS event type names, shared by server fan-out and the driver client.
const (
	EventLocationUpdate        = "location-update"
	EventSubscribeChildTrips   = "subscribe-to-child-trips"
	EventSubscribeSchool       = "subscribe-to-school"
	EventLocationUpdated       = "location-updated"
	EventVehicleLocationUpdate = "vehicle-location-updated"
)

// LocationUpdatedEvent is delivered to child:<student_id> subscribers.
type LocationUpdatedEvent struct {
	Type      string    `json:"type"`
	TripID    uuid.UUID `json:"trip_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	SpeedKmh  float64   `json:"speed_kmh"`
	Timestamp time.Time `json:"timestamp"`
}

// VehicleLocationUpdatedEvent is delivered to school:<school_id> subscribers.
type VehicleLocationUpdatedEvent struct {
	Type      string    `json:"type"`
	TripID    uuid.UUID `json:"trip_id"`
	VehicleID uuid.UUID `json:"vehicle_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	SpeedKmh  float64   `json:"speed_kmh"`
	Timestamp time.Time `json:"timestamp"`
}

// TripStatusMessage announces a trip lifecycle transition to broker
// consumers.
type TripStatusMessage struct {
	TripID    uuid.UUID `json:"trip_id"`
	SchoolID  uuid.UUID `json:"school_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// TripLocationMessage is the payload published to the location fan-out
// exchange for external dashboard consumers.
type TripLocationMessage struct {
	TripID     uuid.UUID `json:"trip_id"`
	VehicleID  uuid.UUID `json:"vehicle_id"`
	SchoolID   uuid.UUID `json:"school_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	SpeedKmh   float64   `json:"speed_kmh"`
	IsFallback bool      `json:"is_fallback"`
	Timestamp  time.Time `json:"timestamp"`
}
