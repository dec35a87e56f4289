package incident

import (
	"context"
	"strings"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/logger"
	wrap "github.com/Zubra14/verista-tracking/pkg/logger/wrapper"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

type IncidentRepo interface {
	Create(ctx context.Context, incident *models.Incident) (*models.Incident, error)
	ListForTrip(ctx context.Context, tripID uuid.UUID) ([]models.Incident, error)
}

type TripRepo interface {
	IsOwnedBy(ctx context.Context, tripID, driverID uuid.UUID) (bool, error)
}

// Geocoder resolves coordinates into a street address.
type Geocoder interface {
	GetAddress(ctx context.Context, longitude, latitude float64) (string, error)
}

// Service appends incident records to a trip. Incidents are immutable
// once written; resolution lives outside this service.
type Service struct {
	incidentRepo IncidentRepo
	tripRepo     TripRepo
	geocoder     Geocoder
	log          logger.Logger
}

// NewService builds the incident service. geocoder may be nil, in which
// case incidents are stored without a resolved address.
func NewService(incidentRepo IncidentRepo, tripRepo TripRepo, geocoder Geocoder, log logger.Logger) *Service {
	return &Service{
		incidentRepo: incidentRepo,
		tripRepo:     tripRepo,
		geocoder:     geocoder,
		log:          log,
	}
}

// Report records an incident against a trip owned by the driver.
func (s *Service) Report(ctx context.Context, tripID, driverID uuid.UUID, incidentType types.IncidentType, description string, location *models.Location) (*models.Incident, error) {
	ctx = wrap.WithAction(ctx, "incident_report")
	ctx = wrap.WithTripID(ctx, tripID.String())

	if !types.IsValidIncidentType(incidentType) {
		return nil, types.ErrInvalidIncidentType
	}

	owned, err := s.tripRepo.IsOwnedBy(ctx, tripID, driverID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	if !owned {
		return nil, types.ErrTripNotFound
	}

	incident := &models.Incident{
		TripID:      tripID,
		Type:        incidentType,
		Description: strings.TrimSpace(description),
		Location:    location,
	}

	// The address is best effort. A geocoder outage must not block an
	// incident report written from a moving vehicle.
	if location != nil && s.geocoder != nil {
		address, err := s.geocoder.GetAddress(ctx, location.Longitude, location.Latitude)
		if err != nil {
			s.log.Warn(ctx, "failed to resolve incident address", "error", err)
		} else if address != "" {
			incident.Address = &address
		}
	}

	created, err := s.incidentRepo.Create(ctx, incident)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	s.log.Info(ctx, "incident reported", "incident_type", incidentType.String())

	return created, nil
}

// ListForTrip returns the trip's incident history, newest first.
func (s *Service) ListForTrip(ctx context.Context, tripID, driverID uuid.UUID) ([]models.Incident, error) {
	ctx = wrap.WithAction(ctx, "incident_list")
	ctx = wrap.WithTripID(ctx, tripID.String())

	owned, err := s.tripRepo.IsOwnedBy(ctx, tripID, driverID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	if !owned {
		return nil, types.ErrTripNotFound
	}

	return s.incidentRepo.ListForTrip(ctx, tripID)
}
