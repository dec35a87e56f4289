package models

import (
	"time"

	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

// Trip is a single scheduled run of a vehicle over a route. Mutated only
// through the trip service transition operations.
type Trip struct {
	ID        uuid.UUID `json:"id"`
	RouteID   uuid.UUID `json:"route_id"`
	VehicleID uuid.UUID `json:"vehicle_id"`
	DriverID  uuid.UUID `json:"driver_id"`
	SchoolID  uuid.UUID `json:"school_id"`

	Status types.TripStatus `json:"status"`

	StartTime        *time.Time `json:"start_time,omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
	ActualArrival    *time.Time `json:"actual_arrival,omitempty"`

	LastKnownPosition *TrackedPosition `json:"last_known_position,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// TripStudent links one student to one trip with the boarding state for
// that run. One row per (trip, student).
type TripStudent struct {
	TripID    uuid.UUID           `json:"trip_id"`
	StudentID uuid.UUID           `json:"student_id"`
	Status    types.StudentStatus `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
}

// RosterEntry is a student with their per-trip boarding status, as
// returned to the driver client.
type RosterEntry struct {
	StudentID uuid.UUID           `json:"student_id"`
	Name      string              `json:"name"`
	TripID    uuid.UUID           `json:"trip_id"`
	Status    types.StudentStatus `json:"status"`
	UpdatedAt time.Time           `json:"updated_at"`
}
