package trip

import (
	"context"
	"time"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

type TripRepo interface {
	Get(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	Start(ctx context.Context, tripID, driverID uuid.UUID, startedAt time.Time) error
	Complete(ctx context.Context, tripID, driverID uuid.UUID, endedAt time.Time) error
	Cancel(ctx context.Context, tripID uuid.UUID) error
	CurrentForDriver(ctx context.Context, driverID uuid.UUID) (*models.Trip, error)
	IsOwnedBy(ctx context.Context, tripID, driverID uuid.UUID) (bool, error)
}

type StudentRepo interface {
	ListRoster(ctx context.Context, tripID, driverID uuid.UUID) ([]models.RosterEntry, error)
	ClearCurrentTrip(ctx context.Context, tripID uuid.UUID) error
}

// StatusBroker announces lifecycle transitions to broker consumers.
// Announcements are best-effort and never fail the transition.
type StatusBroker interface {
	PublishTripStatus(ctx context.Context, msg models.TripStatusMessage) error
}
