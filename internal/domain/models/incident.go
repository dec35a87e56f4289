package models

import (
	"time"

	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

// Incident is an append-only advisory annotation on a trip. Resolution is
// handled by the external compliance workflow, never here.
type Incident struct {
	ID          uuid.UUID          `json:"id"`
	TripID      uuid.UUID          `json:"trip_id"`
	Type        types.IncidentType `json:"type"`
	Description string             `json:"description"`
	Location    *Location          `json:"location,omitempty"`
	Address     *string            `json:"address,omitempty"`
	ReportedAt  time.Time          `json:"reported_at"`
}
