package incident

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/logger"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

type fakeIncidentRepo struct {
	created []*models.Incident
	listed  []models.Incident
}

func (f *fakeIncidentRepo) Create(ctx context.Context, incident *models.Incident) (*models.Incident, error) {
	f.created = append(f.created, incident)
	return incident, nil
}

func (f *fakeIncidentRepo) ListForTrip(ctx context.Context, tripID uuid.UUID) ([]models.Incident, error) {
	return f.listed, nil
}

type fakeTripRepo struct{ owned bool }

func (f *fakeTripRepo) IsOwnedBy(ctx context.Context, tripID, driverID uuid.UUID) (bool, error) {
	return f.owned, nil
}

type fakeGeocoder struct {
	address string
	err     error
}

func (f *fakeGeocoder) GetAddress(ctx context.Context, longitude, latitude float64) (string, error) {
	return f.address, f.err
}

func newTestService(repo *fakeIncidentRepo, owned bool, geocoder Geocoder) *Service {
	log := logger.InitLogger("test", logger.LevelError)
	return NewService(repo, &fakeTripRepo{owned: owned}, geocoder, log)
}

func TestReport_InvalidType(t *testing.T) {
	repo := &fakeIncidentRepo{}
	svc := newTestService(repo, true, nil)

	_, err := svc.Report(context.Background(), uuid.New(), uuid.New(), types.IncidentType("puncture"), "flat tyre", nil)

	require.ErrorIs(t, err, types.ErrInvalidIncidentType)
	require.Empty(t, repo.created)
}

func TestReport_ForeignTripLooksNonexistent(t *testing.T) {
	repo := &fakeIncidentRepo{}
	svc := newTestService(repo, false, nil)

	_, err := svc.Report(context.Background(), uuid.New(), uuid.New(), types.IncidentDelay, "traffic on the N1", nil)

	require.ErrorIs(t, err, types.ErrTripNotFound)
}

func TestReport_TrimsDescription(t *testing.T) {
	repo := &fakeIncidentRepo{}
	svc := newTestService(repo, true, nil)

	got, err := svc.Report(context.Background(), uuid.New(), uuid.New(), types.IncidentBreakdown, "  engine overheating  ", nil)

	require.NoError(t, err)
	require.Equal(t, "engine overheating", got.Description)
}

func TestReport_ResolvesAddressForLocatedIncident(t *testing.T) {
	repo := &fakeIncidentRepo{}
	svc := newTestService(repo, true, &fakeGeocoder{address: "12 Main Rd, Johannesburg"})

	loc := &models.Location{Latitude: -26.2, Longitude: 28.04}
	got, err := svc.Report(context.Background(), uuid.New(), uuid.New(), types.IncidentAccident, "minor collision", loc)

	require.NoError(t, err)
	require.NotNil(t, got.Address)
	require.Equal(t, "12 Main Rd, Johannesburg", *got.Address)
}

func TestReport_GeocoderFailureIsNotFatal(t *testing.T) {
	repo := &fakeIncidentRepo{}
	svc := newTestService(repo, true, &fakeGeocoder{err: errors.New("rate limited")})

	loc := &models.Location{Latitude: -26.2, Longitude: 28.04}
	got, err := svc.Report(context.Background(), uuid.New(), uuid.New(), types.IncidentAccident, "minor collision", loc)

	require.NoError(t, err, "a geocoder outage must not block the report")
	require.Nil(t, got.Address)
	require.Len(t, repo.created, 1)
}

func TestReport_NoGeocoderConfigured(t *testing.T) {
	repo := &fakeIncidentRepo{}
	svc := newTestService(repo, true, nil)

	loc := &models.Location{Latitude: -26.2, Longitude: 28.04}
	got, err := svc.Report(context.Background(), uuid.New(), uuid.New(), types.IncidentOther, "road closed", loc)

	require.NoError(t, err)
	require.Nil(t, got.Address)
}

func TestListForTrip_OwnershipGate(t *testing.T) {
	repo := &fakeIncidentRepo{listed: []models.Incident{{ID: uuid.New()}}}

	svc := newTestService(repo, false, nil)
	_, err := svc.ListForTrip(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, types.ErrTripNotFound)

	svc = newTestService(repo, true, nil)
	got, err := svc.ListForTrip(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	require.Len(t, got, 1)
}
