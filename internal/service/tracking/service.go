package tracking

import (
	"context"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/logger"
	wrap "github.com/Zubra14/verista-tracking/pkg/logger/wrapper"
	"github.com/Zubra14/verista-tracking/pkg/metrics"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
	"github.com/Zubra14/verista-tracking/pkg/wshub"
)

const serviceLabel = "tracking-service"

// Service is the location ingest and broadcast hub. It persists each
// sample before any broadcast, so a subscriber can never observe an
// event whose position is not yet visible to readers.
type Service struct {
	tripRepo    TripRepo
	studentRepo StudentRepo
	vehicleRepo VehicleRepo
	registry    SubscriptionRegistry
	publisher   LocationPublisher
	log         logger.Logger
}

func NewService(tripRepo TripRepo, studentRepo StudentRepo, vehicleRepo VehicleRepo, registry SubscriptionRegistry, publisher LocationPublisher, log logger.Logger) *Service {
	return &Service{
		tripRepo:    tripRepo,
		studentRepo: studentRepo,
		vehicleRepo: vehicleRepo,
		registry:    registry,
		publisher:   publisher,
		log:         log,
	}
}

// Ingest handles one position sample from an authenticated connection.
// The vehicle's latest location is written unconditionally; trip updates
// and fan-out happen only when the sample names an in_progress trip.
func (s *Service) Ingest(ctx context.Context, user *models.User, sample models.PositionSample) error {
	ctx = wrap.WithAction(ctx, "location_ingest")

	if user == nil || !user.IsDriver() {
		return types.ErrUnauthorized
	}

	if sample.VehicleID.IsZero() {
		vehicleID, err := s.vehicleRepo.VehicleForDriver(ctx, user.ID)
		if err != nil {
			return err
		}
		sample.VehicleID = vehicleID
	}

	if err := s.vehicleRepo.UpsertLocation(ctx, sample); err != nil {
		return wrap.Error(ctx, err)
	}
	metrics.RecordPositionSample(serviceLabel, sample.IsFallback)

	if sample.TripID == nil {
		return nil
	}
	ctx = wrap.WithTripID(ctx, sample.TripID.String())

	trip, err := s.tripRepo.Get(ctx, *sample.TripID)
	if err != nil {
		return err
	}
	if trip.DriverID != user.ID {
		return types.ErrTripNotFound
	}
	if trip.Status != types.TripInProgress {
		return types.ErrTripNotActive
	}

	// Persist before broadcast.
	if err := s.tripRepo.UpdateLastPosition(ctx, trip.ID, sample); err != nil {
		return wrap.Error(ctx, err)
	}

	s.broadcast(ctx, trip, sample)

	if s.publisher != nil {
		msg := models.TripLocationMessage{
			TripID:     trip.ID,
			VehicleID:  sample.VehicleID,
			SchoolID:   trip.SchoolID,
			Latitude:   sample.Latitude,
			Longitude:  sample.Longitude,
			SpeedKmh:   sample.SpeedKmh,
			IsFallback: sample.IsFallback,
			Timestamp:  sample.Timestamp,
		}
		if err := s.publisher.PublishLocation(ctx, msg); err != nil {
			// Broker trouble must not fail the ingest path.
			s.log.Warn(ctx, "failed to publish location to broker", "error", err.Error())
		}
	}

	return nil
}

// broadcast fans the sample out to school:<school_id> and to
// child:<student_id> for every student on the roster. Delivery is
// at-most-once: failed or disconnected subscribers are dropped silently
// because the next sample supersedes this one anyway.
func (s *Service) broadcast(ctx context.Context, trip *models.Trip, sample models.PositionSample) {
	schoolEvent := models.VehicleLocationUpdatedEvent{
		Type:      models.EventVehicleLocationUpdate,
		TripID:    trip.ID,
		VehicleID: sample.VehicleID,
		Latitude:  sample.Latitude,
		Longitude: sample.Longitude,
		SpeedKmh:  sample.SpeedKmh,
		Timestamp: sample.Timestamp,
	}
	s.registry.Publish(ctx, types.SchoolTopic(trip.SchoolID), schoolEvent)
	metrics.RecordBroadcast(serviceLabel, nil)

	studentIDs, err := s.studentRepo.RosterStudentIDs(ctx, trip.ID)
	if err != nil {
		s.log.Error(ctx, "failed to load roster for broadcast", err)
		return
	}

	childEvent := models.LocationUpdatedEvent{
		Type:      models.EventLocationUpdated,
		TripID:    trip.ID,
		Latitude:  sample.Latitude,
		Longitude: sample.Longitude,
		SpeedKmh:  sample.SpeedKmh,
		Timestamp: sample.Timestamp,
	}
	for _, studentID := range studentIDs {
		s.registry.Publish(ctx, types.ChildTopic(studentID), childEvent)
		metrics.RecordBroadcast(serviceLabel, nil)
	}
}

// SubscribeChild attaches the connection to child:<studentID> if the
// caller may watch that student. Refusal is silent in every case: the
// connection is simply not added, so probing cannot reveal which
// student ids exist.
func (s *Service) SubscribeChild(ctx context.Context, user *models.User, conn wshub.Sender, studentID uuid.UUID) {
	ctx = wrap.WithAction(ctx, "subscribe_child")

	if user == nil {
		return
	}

	allowed := false
	switch user.Role {
	case types.RoleParent:
		ok, err := s.studentRepo.IsParentOf(ctx, user.ID, studentID)
		if err != nil {
			s.log.Error(ctx, "parent check failed", err)
			return
		}
		allowed = ok
	case types.RoleAdmin:
		allowed = true
	}
	if !allowed {
		s.log.Debug(ctx, "child subscription refused", "user_id", user.ID.String())
		return
	}

	if s.registry.Subscribe(conn, types.ChildTopic(studentID)) {
		metrics.SubscriptionsGauge.WithLabelValues(serviceLabel).Inc()
	}
}

// SubscribeSchool attaches the connection to school:<schoolID>. A school
// account is bound to its own school id; government and admin accounts
// may watch any school. Same silent-refusal contract as SubscribeChild.
func (s *Service) SubscribeSchool(ctx context.Context, user *models.User, conn wshub.Sender, schoolID uuid.UUID) {
	ctx = wrap.WithAction(ctx, "subscribe_school")

	if user == nil {
		return
	}

	allowed := false
	switch user.Role {
	case types.RoleSchool:
		allowed = user.SchoolID != nil && *user.SchoolID == schoolID
	case types.RoleGovernment, types.RoleAdmin:
		allowed = true
	}
	if !allowed {
		s.log.Debug(ctx, "school subscription refused", "user_id", user.ID.String())
		return
	}

	if s.registry.Subscribe(conn, types.SchoolTopic(schoolID)) {
		metrics.SubscriptionsGauge.WithLabelValues(serviceLabel).Inc()
	}
}

// Disconnect is the single cleanup path for a closed connection.
func (s *Service) Disconnect(ctx context.Context, connID uuid.UUID) {
	removed := s.registry.UnsubscribeAll(connID)
	metrics.SubscriptionsGauge.WithLabelValues(serviceLabel).Sub(float64(removed))
}
