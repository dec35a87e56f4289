package trip

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/logger"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

type fakeTripRepo struct {
	trip        *models.Trip
	current     *models.Trip
	owned       bool
	startErr    error
	completeErr error
	cancelErr   error

	startedAt   *time.Time
	completedAt *time.Time
	cancelled   []uuid.UUID
}

func (f *fakeTripRepo) Get(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	if f.trip == nil {
		return nil, types.ErrTripNotFound
	}
	return f.trip, nil
}

func (f *fakeTripRepo) Start(ctx context.Context, tripID, driverID uuid.UUID, startedAt time.Time) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.startedAt = &startedAt
	f.trip.Status = types.TripInProgress
	return nil
}

func (f *fakeTripRepo) Complete(ctx context.Context, tripID, driverID uuid.UUID, endedAt time.Time) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completedAt = &endedAt
	f.trip.Status = types.TripCompleted
	return nil
}

func (f *fakeTripRepo) Cancel(ctx context.Context, tripID uuid.UUID) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, tripID)
	return nil
}

func (f *fakeTripRepo) CurrentForDriver(ctx context.Context, driverID uuid.UUID) (*models.Trip, error) {
	return f.current, nil
}

func (f *fakeTripRepo) IsOwnedBy(ctx context.Context, tripID, driverID uuid.UUID) (bool, error) {
	return f.owned, nil
}

type fakeStudentRepo struct {
	roster       []models.RosterEntry
	clearedTrips []uuid.UUID
}

func (f *fakeStudentRepo) ListRoster(ctx context.Context, tripID, driverID uuid.UUID) ([]models.RosterEntry, error) {
	return f.roster, nil
}

func (f *fakeStudentRepo) ClearCurrentTrip(ctx context.Context, tripID uuid.UUID) error {
	f.clearedTrips = append(f.clearedTrips, tripID)
	return nil
}

type fakeBroker struct {
	published []models.TripStatusMessage
	err       error
}

func (f *fakeBroker) PublishTripStatus(ctx context.Context, msg models.TripStatusMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testLogger() logger.Logger {
	return logger.InitLogger("test", logger.LevelError)
}

func scheduledTrip(driverID uuid.UUID) *models.Trip {
	return &models.Trip{
		ID:       uuid.New(),
		DriverID: driverID,
		SchoolID: uuid.New(),
		Status:   types.TripScheduled,
	}
}

func TestStart_TransitionsAndAnnounces(t *testing.T) {
	driverID := uuid.New()
	repo := &fakeTripRepo{trip: scheduledTrip(driverID)}
	broker := &fakeBroker{}
	svc := NewService(repo, &fakeStudentRepo{}, passthroughTx{}, broker, testLogger())

	got, err := svc.Start(context.Background(), repo.trip.ID, driverID)

	require.NoError(t, err)
	require.Equal(t, types.TripInProgress, got.Status)
	require.NotNil(t, repo.startedAt)

	require.Len(t, broker.published, 1)
	require.Equal(t, repo.trip.ID, broker.published[0].TripID)
	require.Equal(t, repo.trip.SchoolID, broker.published[0].SchoolID)
	require.Equal(t, types.TripInProgress.String(), broker.published[0].Status)
}

func TestStart_GuardFailurePropagates(t *testing.T) {
	driverID := uuid.New()
	repo := &fakeTripRepo{trip: scheduledTrip(driverID), startErr: types.ErrTripNotFound}
	broker := &fakeBroker{}
	svc := NewService(repo, &fakeStudentRepo{}, passthroughTx{}, broker, testLogger())

	_, err := svc.Start(context.Background(), repo.trip.ID, driverID)

	require.ErrorIs(t, err, types.ErrTripNotFound)
	require.Empty(t, broker.published, "failed transition must not be announced")
}

func TestEnd_CompletesAndDetachesStudents(t *testing.T) {
	driverID := uuid.New()
	repo := &fakeTripRepo{trip: scheduledTrip(driverID)}
	repo.trip.Status = types.TripInProgress
	students := &fakeStudentRepo{}
	broker := &fakeBroker{}
	svc := NewService(repo, students, passthroughTx{}, broker, testLogger())

	got, err := svc.End(context.Background(), repo.trip.ID, driverID)

	require.NoError(t, err)
	require.Equal(t, types.TripCompleted, got.Status)
	require.NotNil(t, repo.completedAt)
	require.Equal(t, []uuid.UUID{repo.trip.ID}, students.clearedTrips,
		"ending a trip must release every student's current trip pointer")

	require.Len(t, broker.published, 1)
	require.Equal(t, types.TripCompleted.String(), broker.published[0].Status)
}

func TestEnd_CompleteFailureSkipsDetach(t *testing.T) {
	driverID := uuid.New()
	repo := &fakeTripRepo{trip: scheduledTrip(driverID), completeErr: types.ErrTripNotFound}
	students := &fakeStudentRepo{}
	svc := NewService(repo, students, passthroughTx{}, &fakeBroker{}, testLogger())

	_, err := svc.End(context.Background(), repo.trip.ID, driverID)

	require.ErrorIs(t, err, types.ErrTripNotFound)
	require.Empty(t, students.clearedTrips)
}

func TestStart_BrokerFailureDoesNotFailTransition(t *testing.T) {
	driverID := uuid.New()
	repo := &fakeTripRepo{trip: scheduledTrip(driverID)}
	broker := &fakeBroker{err: errors.New("channel closed")}
	svc := NewService(repo, &fakeStudentRepo{}, passthroughTx{}, broker, testLogger())

	got, err := svc.Start(context.Background(), repo.trip.ID, driverID)

	require.NoError(t, err)
	require.Equal(t, types.TripInProgress, got.Status)
}

func TestStart_NilBroker(t *testing.T) {
	driverID := uuid.New()
	repo := &fakeTripRepo{trip: scheduledTrip(driverID)}
	svc := NewService(repo, &fakeStudentRepo{}, passthroughTx{}, nil, testLogger())

	_, err := svc.Start(context.Background(), repo.trip.ID, driverID)

	require.NoError(t, err)
}

func TestCancel_DelegatesToGuardedTransition(t *testing.T) {
	repo := &fakeTripRepo{}
	svc := NewService(repo, &fakeStudentRepo{}, passthroughTx{}, nil, testLogger())
	tripID := uuid.New()

	require.NoError(t, svc.Cancel(context.Background(), tripID))
	require.Equal(t, []uuid.UUID{tripID}, repo.cancelled)
}

func TestCancel_DepartedTripLooksNonexistent(t *testing.T) {
	repo := &fakeTripRepo{cancelErr: types.ErrTripNotFound}
	svc := NewService(repo, &fakeStudentRepo{}, passthroughTx{}, nil, testLogger())

	err := svc.Cancel(context.Background(), uuid.New())

	require.ErrorIs(t, err, types.ErrTripNotFound)
	require.Empty(t, repo.cancelled)
}

func TestCurrentFor_NoAssignment(t *testing.T) {
	svc := NewService(&fakeTripRepo{}, &fakeStudentRepo{}, passthroughTx{}, nil, testLogger())

	got, err := svc.CurrentFor(context.Background(), uuid.New())

	require.NoError(t, err)
	require.Nil(t, got, "no active trip is not an error")
}

func TestAssignedStudents_ForeignTripLooksNonexistent(t *testing.T) {
	repo := &fakeTripRepo{owned: false}
	svc := NewService(repo, &fakeStudentRepo{}, passthroughTx{}, nil, testLogger())

	_, err := svc.AssignedStudents(context.Background(), uuid.New(), uuid.New())

	require.ErrorIs(t, err, types.ErrTripNotFound)
}

func TestAssignedStudents_ReturnsRoster(t *testing.T) {
	roster := []models.RosterEntry{
		{StudentID: uuid.New(), Name: "Amahle N.", Status: types.StudentWaiting},
		{StudentID: uuid.New(), Name: "Bongani M.", Status: types.StudentPickedUp},
	}
	repo := &fakeTripRepo{owned: true}
	svc := NewService(repo, &fakeStudentRepo{roster: roster}, passthroughTx{}, nil, testLogger())

	got, err := svc.AssignedStudents(context.Background(), uuid.New(), uuid.New())

	require.NoError(t, err)
	require.Equal(t, roster, got)
}
