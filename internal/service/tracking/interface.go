package tracking

import (
	"context"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
	"github.com/Zubra14/verista-tracking/pkg/wshub"
)

type TripRepo interface {
	Get(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
	UpdateLastPosition(ctx context.Context, tripID uuid.UUID, sample models.PositionSample) error
}

type StudentRepo interface {
	RosterStudentIDs(ctx context.Context, tripID uuid.UUID) ([]uuid.UUID, error)
	IsParentOf(ctx context.Context, parentID, studentID uuid.UUID) (bool, error)
}

type VehicleRepo interface {
	UpsertLocation(ctx context.Context, sample models.PositionSample) error
	VehicleForDriver(ctx context.Context, driverID uuid.UUID) (uuid.UUID, error)
}

// SubscriptionRegistry is the hub's view of topic membership. Publish is
// fire-and-forget and returns the number of subscribers reached.
type SubscriptionRegistry interface {
	Subscribe(s wshub.Sender, topic types.Topic) bool
	UnsubscribeAll(connID uuid.UUID) int
	Publish(ctx context.Context, topic types.Topic, payload any) int
}

// LocationPublisher pushes samples to the broker for consumers outside
// the websocket fan-out (dashboards, archival).
type LocationPublisher interface {
	PublishLocation(ctx context.Context, msg models.TripLocationMessage) error
}
