package roster

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
	trip *models.Trip
	err  error
}

func (f *fakeTripRepo) Get(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.trip, nil
}

type statusWrite struct {
	tripID    uuid.UUID
	studentID uuid.UUID
	status    types.StudentStatus
	at        time.Time
}

type mirrorWrite struct {
	studentID uuid.UUID
	tripID    uuid.UUID
	status    types.StudentStatus
}

type fakeStudentRepo struct {
	tripStudent *models.TripStudent
	getErr      error

	statusWrites []statusWrite
	mirrorWrites []mirrorWrite
}

func (f *fakeStudentRepo) GetTripStudent(ctx context.Context, tripID, studentID uuid.UUID) (*models.TripStudent, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.tripStudent, nil
}

func (f *fakeStudentRepo) UpdateStatus(ctx context.Context, tripID, studentID uuid.UUID, status types.StudentStatus, at time.Time) error {
	f.statusWrites = append(f.statusWrites, statusWrite{tripID, studentID, status, at})
	return nil
}

func (f *fakeStudentRepo) UpdateCurrentStatus(ctx context.Context, studentID, tripID uuid.UUID, status types.StudentStatus) error {
	f.mirrorWrites = append(f.mirrorWrites, mirrorWrite{studentID, tripID, status})
	return nil
}

// fakeTxManager runs fn directly; transactional behavior is covered by
// the repository layer.
type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

func newTestService(tripRepo *fakeTripRepo, studentRepo *fakeStudentRepo) (*Service, *fakeTxManager) {
	tx := &fakeTxManager{}
	log := logger.InitLogger("test", logger.LevelError)
	return NewService(tripRepo, studentRepo, tx, log), tx
}

func activeTrip(driverID uuid.UUID) *models.Trip {
	return &models.Trip{
		ID:       uuid.New(),
		DriverID: driverID,
		Status:   types.TripInProgress,
	}
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	driverID := uuid.New()
	students := &fakeStudentRepo{}
	svc, _ := newTestService(&fakeTripRepo{trip: activeTrip(driverID)}, students)

	_, err := svc.SetStatus(context.Background(), uuid.New(), uuid.New(), types.StudentStatus("boarded"), driverID)

	require.ErrorIs(t, err, types.ErrInvalidStatus)
	require.Empty(t, students.statusWrites, "invalid status must be rejected before any write")
}

func TestSetStatus_UnknownPair(t *testing.T) {
	driverID := uuid.New()
	students := &fakeStudentRepo{getErr: types.ErrStudentNotFound}
	svc, _ := newTestService(&fakeTripRepo{trip: activeTrip(driverID)}, students)

	_, err := svc.SetStatus(context.Background(), uuid.New(), uuid.New(), types.StudentPickedUp, driverID)

	require.ErrorIs(t, err, types.ErrStudentNotFound)
}

func TestSetStatus_ForeignDriver(t *testing.T) {
	trip := activeTrip(uuid.New())
	students := &fakeStudentRepo{tripStudent: &models.TripStudent{}}
	svc, _ := newTestService(&fakeTripRepo{trip: trip}, students)

	_, err := svc.SetStatus(context.Background(), trip.ID, uuid.New(), types.StudentPickedUp, uuid.New())

	require.ErrorIs(t, err, types.ErrForbidden)
	require.Empty(t, students.statusWrites)
}

func TestSetStatus_TripNotActive(t *testing.T) {
	driverID := uuid.New()
	trip := activeTrip(driverID)
	trip.Status = types.TripScheduled
	students := &fakeStudentRepo{tripStudent: &models.TripStudent{}}
	svc, _ := newTestService(&fakeTripRepo{trip: trip}, students)

	_, err := svc.SetStatus(context.Background(), trip.ID, uuid.New(), types.StudentPickedUp, driverID)

	require.ErrorIs(t, err, types.ErrTripNotActive)
}

func TestSetStatus_WritesRosterAndMirrorTogether(t *testing.T) {
	driverID := uuid.New()
	trip := activeTrip(driverID)
	studentID := uuid.New()
	students := &fakeStudentRepo{tripStudent: &models.TripStudent{
		TripID:    trip.ID,
		StudentID: studentID,
		Status:    types.StudentWaiting,
	}}
	svc, tx := newTestService(&fakeTripRepo{trip: trip}, students)

	got, err := svc.SetStatus(context.Background(), trip.ID, studentID, types.StudentPickedUp, driverID)

	require.NoError(t, err)
	require.Equal(t, 1, tx.calls, "both writes must share one transaction")

	require.Len(t, students.statusWrites, 1)
	require.Equal(t, types.StudentPickedUp, students.statusWrites[0].status)
	require.Equal(t, trip.ID, students.statusWrites[0].tripID)

	require.Len(t, students.mirrorWrites, 1)
	require.Equal(t, studentID, students.mirrorWrites[0].studentID)
	require.Equal(t, types.StudentPickedUp, students.mirrorWrites[0].status)

	require.Equal(t, types.StudentPickedUp, got.Status)
	require.Equal(t, students.statusWrites[0].at, got.Timestamp)
}

// Skipping states is legal: waiting may go straight to dropped_off and a
// correction may move dropped_off back to picked_up.
func TestSetStatus_LooseStateMachine(t *testing.T) {
	driverID := uuid.New()
	trip := activeTrip(driverID)
	studentID := uuid.New()

	transitions := []struct {
		from types.StudentStatus
		to   types.StudentStatus
	}{
		{types.StudentWaiting, types.StudentDroppedOff},
		{types.StudentDroppedOff, types.StudentPickedUp},
		{types.StudentAbsent, types.StudentPickedUp},
	}

	for _, tr := range transitions {
		students := &fakeStudentRepo{tripStudent: &models.TripStudent{
			TripID:    trip.ID,
			StudentID: studentID,
			Status:    tr.from,
		}}
		svc, _ := newTestService(&fakeTripRepo{trip: trip}, students)

		got, err := svc.SetStatus(context.Background(), trip.ID, studentID, tr.to, driverID)
		require.NoError(t, err, "%s -> %s must be allowed", tr.from, tr.to)
		require.Equal(t, tr.to, got.Status)
	}
}

func TestSetStatus_TripLookupError(t *testing.T) {
	students := &fakeStudentRepo{tripStudent: &models.TripStudent{}}
	svc, _ := newTestService(&fakeTripRepo{err: errors.New("connection refused")}, students)

	_, err := svc.SetStatus(context.Background(), uuid.New(), uuid.New(), types.StudentAbsent, uuid.New())

	require.Error(t, err)
	require.Empty(t, students.statusWrites)
}
