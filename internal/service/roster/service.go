package roster

import (
	"context"
	"time"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/logger"
	wrap "github.com/Zubra14/verista-tracking/pkg/logger/wrapper"
	"github.com/Zubra14/verista-tracking/pkg/trm"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

// Service tracks per-student boarding state on a trip. The state machine
// is deliberately loose (states may be skipped, pickup order is not
// enforced) because real boarding is irregular; what is enforced is who
// may write and when.
type Service struct {
	tripRepo    TripRepo
	studentRepo StudentRepo
	txManager   trm.TxManager
	log         logger.Logger
}

func NewService(tripRepo TripRepo, studentRepo StudentRepo, txManager trm.TxManager, log logger.Logger) *Service {
	return &Service{
		tripRepo:    tripRepo,
		studentRepo: studentRepo,
		txManager:   txManager,
		log:         log,
	}
}

// SetStatus updates one student's boarding status. Checks run in a fixed
// order so the caller always gets the most specific refusal:
// invalid status, unknown pair, foreign driver, inactive trip.
func (s *Service) SetStatus(ctx context.Context, tripID, studentID uuid.UUID, newStatus types.StudentStatus, driverID uuid.UUID) (*models.TripStudent, error) {
	ctx = wrap.WithAction(ctx, "student_status_update")
	ctx = wrap.WithTripID(ctx, tripID.String())

	if !types.IsValidStudentStatus(newStatus) {
		return nil, types.ErrInvalidStatus
	}

	if _, err := s.studentRepo.GetTripStudent(ctx, tripID, studentID); err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.DriverID != driverID {
		return nil, types.ErrForbidden
	}
	if trip.Status != types.TripInProgress {
		return nil, types.ErrTripNotActive
	}

	now := time.Now().UTC()
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.studentRepo.UpdateStatus(ctx, tripID, studentID, newStatus, now); err != nil {
			return err
		}
		return s.studentRepo.UpdateCurrentStatus(ctx, studentID, tripID, newStatus)
	})
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	s.log.Info(ctx, "student status updated",
		"student_id", studentID.String(),
		"status", newStatus.String(),
	)

	return &models.TripStudent{
		TripID:    tripID,
		StudentID: studentID,
		Status:    newStatus,
		Timestamp: now,
	}, nil
}
