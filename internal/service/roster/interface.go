package roster

import (
	"context"
	"time"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

type TripRepo interface {
	Get(ctx context.Context, tripID uuid.UUID) (*models.Trip, error)
}

type StudentRepo interface {
	GetTripStudent(ctx context.Context, tripID, studentID uuid.UUID) (*models.TripStudent, error)
	UpdateStatus(ctx context.Context, tripID, studentID uuid.UUID, status types.StudentStatus, at time.Time) error
	UpdateCurrentStatus(ctx context.Context, studentID, tripID uuid.UUID, status types.StudentStatus) error
}
