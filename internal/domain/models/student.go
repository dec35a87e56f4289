package models

import (
	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

// Student carries the denormalized mirror of the most recent TripStudent
// state: CurrentStatus and CurrentTripID are set on pickup and cleared
// only when the owning trip completes.
type Student struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	ParentID uuid.UUID `json:"parent_id"`
	SchoolID uuid.UUID `json:"school_id"`

	CurrentStatus types.StudentStatus `json:"current_status"`
	CurrentTripID *uuid.UUID          `json:"current_trip_id,omitempty"`
}
