package trip

import (
	"context"
	"time"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/logger"
	wrap "github.com/Zubra14/verista-tracking/pkg/logger/wrapper"
	"github.com/Zubra14/verista-tracking/pkg/metrics"
	"github.com/Zubra14/verista-tracking/pkg/trm"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

const serviceLabel = "tracking-service"

// Service owns the trip lifecycle. Every transition is guarded in SQL,
// so two drivers (or one driver with a flaky retry) cannot move the same
// trip twice.
type Service struct {
	tripRepo    TripRepo
	studentRepo StudentRepo
	txManager   trm.TxManager
	broker      StatusBroker
	log         logger.Logger
}

func NewService(tripRepo TripRepo, studentRepo StudentRepo, txManager trm.TxManager, broker StatusBroker, log logger.Logger) *Service {
	return &Service{
		tripRepo:    tripRepo,
		studentRepo: studentRepo,
		txManager:   txManager,
		broker:      broker,
		log:         log,
	}
}

func (s *Service) announce(ctx context.Context, trip *models.Trip) {
	if s.broker == nil {
		return
	}
	msg := models.TripStatusMessage{
		TripID:    trip.ID,
		SchoolID:  trip.SchoolID,
		Status:    trip.Status.String(),
		Timestamp: time.Now().UTC(),
	}
	if err := s.broker.PublishTripStatus(ctx, msg); err != nil {
		s.log.Warn(ctx, "failed to announce trip status", "error", err.Error())
	}
}

// Start moves the driver's trip from scheduled to in_progress and stamps
// the actual departure time.
func (s *Service) Start(ctx context.Context, tripID, driverID uuid.UUID) (*models.Trip, error) {
	ctx = wrap.WithAction(ctx, "trip_start")
	ctx = wrap.WithTripID(ctx, tripID.String())

	if err := s.tripRepo.Start(ctx, tripID, driverID, time.Now().UTC()); err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.Get(ctx, tripID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	metrics.ActiveTripsGauge.WithLabelValues(serviceLabel).Inc()
	s.announce(ctx, trip)
	s.log.Info(ctx, "trip started")

	return trip, nil
}

// End completes the driver's in_progress trip. The completion and the
// detaching of student trip pointers commit together.
func (s *Service) End(ctx context.Context, tripID, driverID uuid.UUID) (*models.Trip, error) {
	ctx = wrap.WithAction(ctx, "trip_end")
	ctx = wrap.WithTripID(ctx, tripID.String())

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.tripRepo.Complete(ctx, tripID, driverID, time.Now().UTC()); err != nil {
			return err
		}
		return s.studentRepo.ClearCurrentTrip(ctx, tripID)
	})
	if err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.Get(ctx, tripID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	metrics.ActiveTripsGauge.WithLabelValues(serviceLabel).Dec()
	s.announce(ctx, trip)
	s.log.Info(ctx, "trip completed")

	return trip, nil
}

// Cancel aborts a trip that has not left yet.
func (s *Service) Cancel(ctx context.Context, tripID uuid.UUID) error {
	ctx = wrap.WithAction(ctx, "trip_cancel")
	ctx = wrap.WithTripID(ctx, tripID.String())

	if err := s.tripRepo.Cancel(ctx, tripID); err != nil {
		return err
	}

	s.log.Info(ctx, "trip cancelled")
	return nil
}

// CurrentFor returns the driver's active trip, preferring an in_progress
// trip over upcoming scheduled ones. A nil trip with nil error means the
// driver has nothing assigned right now.
func (s *Service) CurrentFor(ctx context.Context, driverID uuid.UUID) (*models.Trip, error) {
	ctx = wrap.WithAction(ctx, "trip_current")

	return s.tripRepo.CurrentForDriver(ctx, driverID)
}

// AssignedStudents returns the roster of a trip owned by the driver.
func (s *Service) AssignedStudents(ctx context.Context, tripID, driverID uuid.UUID) ([]models.RosterEntry, error) {
	ctx = wrap.WithAction(ctx, "trip_roster")
	ctx = wrap.WithTripID(ctx, tripID.String())

	// An empty roster and a trip the driver does not own look the same
	// in the roster query. Confirm ownership first so the caller never
	// learns whether a foreign trip id exists.
	owned, err := s.tripRepo.IsOwnedBy(ctx, tripID, driverID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	if !owned {
		return nil, types.ErrTripNotFound
	}

	roster, err := s.studentRepo.ListRoster(ctx, tripID, driverID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	return roster, nil
}
