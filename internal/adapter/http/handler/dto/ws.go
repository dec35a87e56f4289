package dto

import (
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

// ClientFrame is the single inbound websocket message shape. Type picks
// the event; the remaining fields are event-specific and ignored
// otherwise.
type ClientFrame struct {
	Type string `json:"type"`

	// location-update
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Speed     *float64   `json:"speed,omitempty"`
	RouteID   *uuid.UUID `json:"route_id,omitempty"`
	TripID    *uuid.UUID `json:"trip_id,omitempty"`

	// IsFallback marks a synthetic sample from a client whose sensor
	// failed; it travels with the sample all the way to consumers.
	IsFallback bool `json:"is_fallback,omitempty"`

	// subscribe-to-child-trips / subscribe-to-school
	ChildID  *uuid.UUID `json:"child_id,omitempty"`
	SchoolID *uuid.UUID `json:"school_id,omitempty"`
}

// WSError is the error frame sent back on malformed input.
type WSError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewWSError(message string) WSError {
	return WSError{Type: "error", Message: message}
}
