package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/logger"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
	"github.com/Zubra14/verista-tracking/pkg/wshub"
)

// event log shared by the fakes so tests can assert ordering across
// persistence and broadcast.
type opLog struct {
	ops []string
}

type fakeTripRepo struct {
	log  *opLog
	trip *models.Trip

	lastPosition *models.PositionSample
}

func (f *fakeTripRepo) Get(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	if f.trip == nil || f.trip.ID != tripID {
		return nil, types.ErrTripNotFound
	}
	return f.trip, nil
}

func (f *fakeTripRepo) UpdateLastPosition(ctx context.Context, tripID uuid.UUID, sample models.PositionSample) error {
	f.log.ops = append(f.log.ops, "persist")
	f.lastPosition = &sample
	return nil
}

type fakeStudentRepo struct {
	rosterIDs []uuid.UUID
	parents   map[uuid.UUID]uuid.UUID // studentID -> parentID
}

func (f *fakeStudentRepo) RosterStudentIDs(ctx context.Context, tripID uuid.UUID) ([]uuid.UUID, error) {
	return f.rosterIDs, nil
}

func (f *fakeStudentRepo) IsParentOf(ctx context.Context, parentID, studentID uuid.UUID) (bool, error) {
	return f.parents[studentID] == parentID, nil
}

type fakeVehicleRepo struct {
	vehicleID uuid.UUID
	upserts   []models.PositionSample
}

func (f *fakeVehicleRepo) UpsertLocation(ctx context.Context, sample models.PositionSample) error {
	f.upserts = append(f.upserts, sample)
	return nil
}

func (f *fakeVehicleRepo) VehicleForDriver(ctx context.Context, driverID uuid.UUID) (uuid.UUID, error) {
	if f.vehicleID.IsZero() {
		return uuid.UUID{}, types.ErrVehicleNotFound
	}
	return f.vehicleID, nil
}

type published struct {
	topic   types.Topic
	payload any
}

type fakeRegistry struct {
	log *opLog

	subscribed   []types.Topic
	publishes    []published
	unsubscribes []uuid.UUID
}

func (f *fakeRegistry) Subscribe(s wshub.Sender, topic types.Topic) bool {
	f.subscribed = append(f.subscribed, topic)
	return true
}

func (f *fakeRegistry) UnsubscribeAll(connID uuid.UUID) int {
	f.unsubscribes = append(f.unsubscribes, connID)
	return len(f.subscribed)
}

func (f *fakeRegistry) Publish(ctx context.Context, topic types.Topic, payload any) int {
	if f.log != nil {
		f.log.ops = append(f.log.ops, "publish:"+topic.String())
	}
	f.publishes = append(f.publishes, published{topic, payload})
	return 1
}

type fakeSender struct{ id uuid.UUID }

func (f *fakeSender) ID() uuid.UUID    { return f.id }
func (f *fakeSender) Send(v any) error { return nil }

type fixture struct {
	svc      *Service
	trips    *fakeTripRepo
	students *fakeStudentRepo
	vehicles *fakeVehicleRepo
	registry *fakeRegistry
	log      *opLog
}

func newFixture(trip *models.Trip) *fixture {
	log := &opLog{}
	trips := &fakeTripRepo{log: log, trip: trip}
	students := &fakeStudentRepo{parents: map[uuid.UUID]uuid.UUID{}}
	vehicles := &fakeVehicleRepo{vehicleID: uuid.New()}
	registry := &fakeRegistry{log: log}
	l := logger.InitLogger("test", logger.LevelError)

	return &fixture{
		svc:      NewService(trips, students, vehicles, registry, nil, l),
		trips:    trips,
		students: students,
		vehicles: vehicles,
		registry: registry,
		log:      log,
	}
}

func driver(id uuid.UUID) *models.User {
	return &models.User{ID: id, Role: types.RoleDriver}
}

func sampleFor(trip *models.Trip) models.PositionSample {
	return models.PositionSample{
		VehicleID: trip.VehicleID,
		TripID:    &trip.ID,
		Latitude:  -26.1,
		Longitude: 28.05,
		SpeedKmh:  38,
		Timestamp: time.Now().UTC(),
	}
}

func activeTrip(driverID uuid.UUID) *models.Trip {
	return &models.Trip{
		ID:        uuid.New(),
		DriverID:  driverID,
		SchoolID:  uuid.New(),
		VehicleID: uuid.New(),
		Status:    types.TripInProgress,
	}
}

func TestIngest_RejectsNonDriver(t *testing.T) {
	f := newFixture(nil)

	for _, role := range []types.UserRole{types.RoleParent, types.RoleSchool, types.RoleGovernment, types.RoleAdmin} {
		user := &models.User{ID: uuid.New(), Role: role}
		err := f.svc.Ingest(context.Background(), user, models.PositionSample{})
		require.ErrorIs(t, err, types.ErrUnauthorized, "role %s must not ingest", role)
	}
	require.Empty(t, f.vehicles.upserts)
}

func TestIngest_ResolvesVehicleFromDriver(t *testing.T) {
	driverID := uuid.New()
	f := newFixture(nil)

	err := f.svc.Ingest(context.Background(), driver(driverID), models.PositionSample{
		Latitude: -26.1, Longitude: 28.05, Timestamp: time.Now().UTC(),
	})

	require.NoError(t, err)
	require.Len(t, f.vehicles.upserts, 1)
	require.Equal(t, f.vehicles.vehicleID, f.vehicles.upserts[0].VehicleID)
}

func TestIngest_NoTrip_UpdatesVehicleOnly(t *testing.T) {
	driverID := uuid.New()
	f := newFixture(nil)

	err := f.svc.Ingest(context.Background(), driver(driverID), models.PositionSample{
		VehicleID: uuid.New(), Latitude: -26.1, Longitude: 28.05,
	})

	require.NoError(t, err)
	require.Len(t, f.vehicles.upserts, 1)
	require.Empty(t, f.registry.publishes, "sample without trip must not broadcast")
}

func TestIngest_ForeignTripLooksNonexistent(t *testing.T) {
	trip := activeTrip(uuid.New())
	f := newFixture(trip)

	sample := sampleFor(trip)
	err := f.svc.Ingest(context.Background(), driver(uuid.New()), sample)

	require.ErrorIs(t, err, types.ErrTripNotFound)
	require.Nil(t, f.trips.lastPosition)
	require.Empty(t, f.registry.publishes)
}

func TestIngest_TripNotInProgress(t *testing.T) {
	driverID := uuid.New()
	trip := activeTrip(driverID)
	trip.Status = types.TripScheduled
	f := newFixture(trip)

	err := f.svc.Ingest(context.Background(), driver(driverID), sampleFor(trip))

	require.ErrorIs(t, err, types.ErrTripNotActive)
	require.Empty(t, f.registry.publishes)
}

func TestIngest_FansOutToSchoolAndEveryRosterChild(t *testing.T) {
	driverID := uuid.New()
	trip := activeTrip(driverID)
	f := newFixture(trip)

	s1, s2 := uuid.New(), uuid.New()
	f.students.rosterIDs = []uuid.UUID{s1, s2}

	sample := sampleFor(trip)
	err := f.svc.Ingest(context.Background(), driver(driverID), sample)
	require.NoError(t, err)

	require.Len(t, f.registry.publishes, 3, "one school topic plus one per roster student")
	require.Equal(t, types.SchoolTopic(trip.SchoolID), f.registry.publishes[0].topic)
	require.Equal(t, types.ChildTopic(s1), f.registry.publishes[1].topic)
	require.Equal(t, types.ChildTopic(s2), f.registry.publishes[2].topic)

	schoolEvent, ok := f.registry.publishes[0].payload.(models.VehicleLocationUpdatedEvent)
	require.True(t, ok)
	require.Equal(t, models.EventVehicleLocationUpdate, schoolEvent.Type)
	require.Equal(t, sample.Latitude, schoolEvent.Latitude)
	require.Equal(t, sample.VehicleID, schoolEvent.VehicleID)

	childEvent, ok := f.registry.publishes[1].payload.(models.LocationUpdatedEvent)
	require.True(t, ok)
	require.Equal(t, models.EventLocationUpdated, childEvent.Type)
	require.Equal(t, trip.ID, childEvent.TripID)
}

func TestIngest_PersistsBeforeBroadcast(t *testing.T) {
	driverID := uuid.New()
	trip := activeTrip(driverID)
	f := newFixture(trip)
	f.students.rosterIDs = []uuid.UUID{uuid.New()}

	err := f.svc.Ingest(context.Background(), driver(driverID), sampleFor(trip))
	require.NoError(t, err)

	require.NotEmpty(t, f.log.ops)
	require.Equal(t, "persist", f.log.ops[0],
		"a subscriber must never observe an event whose position is not yet readable")
}

func TestSubscribeChild_ParentOfStudent(t *testing.T) {
	f := newFixture(nil)
	parentID, studentID := uuid.New(), uuid.New()
	f.students.parents[studentID] = parentID

	user := &models.User{ID: parentID, Role: types.RoleParent}
	f.svc.SubscribeChild(context.Background(), user, &fakeSender{id: uuid.New()}, studentID)

	require.Equal(t, []types.Topic{types.ChildTopic(studentID)}, f.registry.subscribed)
}

func TestSubscribeChild_UnrelatedParentRefusedSilently(t *testing.T) {
	f := newFixture(nil)
	f.students.parents[uuid.New()] = uuid.New()

	user := &models.User{ID: uuid.New(), Role: types.RoleParent}
	f.svc.SubscribeChild(context.Background(), user, &fakeSender{id: uuid.New()}, uuid.New())

	require.Empty(t, f.registry.subscribed, "refusal must leave no observable trace")
}

func TestSubscribeChild_AdminMayWatchAnyStudent(t *testing.T) {
	f := newFixture(nil)

	user := &models.User{ID: uuid.New(), Role: types.RoleAdmin}
	f.svc.SubscribeChild(context.Background(), user, &fakeSender{id: uuid.New()}, uuid.New())

	require.Len(t, f.registry.subscribed, 1)
}

func TestSubscribeChild_DriverRefused(t *testing.T) {
	f := newFixture(nil)

	f.svc.SubscribeChild(context.Background(), driver(uuid.New()), &fakeSender{id: uuid.New()}, uuid.New())

	require.Empty(t, f.registry.subscribed)
}

func TestSubscribeSchool_BoundToOwnSchool(t *testing.T) {
	f := newFixture(nil)
	ownSchool := uuid.New()
	user := &models.User{ID: uuid.New(), Role: types.RoleSchool, SchoolID: &ownSchool}

	f.svc.SubscribeSchool(context.Background(), user, &fakeSender{id: uuid.New()}, ownSchool)
	require.Len(t, f.registry.subscribed, 1)

	f.svc.SubscribeSchool(context.Background(), user, &fakeSender{id: uuid.New()}, uuid.New())
	require.Len(t, f.registry.subscribed, 1, "a school account must not watch other schools")
}

func TestSubscribeSchool_GovernmentMayWatchAnySchool(t *testing.T) {
	f := newFixture(nil)
	user := &models.User{ID: uuid.New(), Role: types.RoleGovernment}

	f.svc.SubscribeSchool(context.Background(), user, &fakeSender{id: uuid.New()}, uuid.New())

	require.Len(t, f.registry.subscribed, 1)
}

func TestDisconnect_RemovesAllSubscriptions(t *testing.T) {
	f := newFixture(nil)
	connID := uuid.New()

	f.svc.Disconnect(context.Background(), connID)

	require.Equal(t, []uuid.UUID{connID}, f.registry.unsubscribes)
}
