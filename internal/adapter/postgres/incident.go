package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/pkg/metrics"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

type IncidentRepo struct {
	db *pgxpool.Pool
}

func NewIncidentRepo(db *pgxpool.Pool) *IncidentRepo {
	return &IncidentRepo{db: db}
}

// Create inserts the incident and returns it with the generated id and
// server timestamp filled in.
func (r *IncidentRepo) Create(ctx context.Context, incident *models.Incident) (*models.Incident, error) {
	start := time.Now()

	var err error
	if incident.Location != nil {
		query := `
			INSERT INTO trip_incidents (id, trip_id, incident_type, description, address, location, reported_at)
			VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($6, $7), 4326), now())
			RETURNING reported_at;`

		incident.ID = uuid.New()
		err = TxorDB(ctx, r.db).QueryRow(ctx, query,
			incident.ID, incident.TripID, incident.Type, incident.Description, incident.Address,
			incident.Location.Longitude, incident.Location.Latitude,
		).Scan(&incident.ReportedAt)
	} else {
		query := `
			INSERT INTO trip_incidents (id, trip_id, incident_type, description, reported_at)
			VALUES ($1, $2, $3, $4, now())
			RETURNING reported_at;`

		incident.ID = uuid.New()
		err = TxorDB(ctx, r.db).QueryRow(ctx, query,
			incident.ID, incident.TripID, incident.Type, incident.Description,
		).Scan(&incident.ReportedAt)
	}

	metrics.RecordDatabaseQuery(serviceLabel, "incident_create", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("incident repo: Create: %w", err)
	}

	return incident, nil
}

// ListForTrip returns the trip's incidents newest first.
func (r *IncidentRepo) ListForTrip(ctx context.Context, tripID uuid.UUID) ([]models.Incident, error) {
	q := TxorDB(ctx, r.db)

	query := `
		SELECT id, trip_id, incident_type, description, address,
		       ST_Y(location::geometry), ST_X(location::geometry), reported_at
		FROM trip_incidents
		WHERE trip_id = $1
		ORDER BY reported_at DESC;`

	rows, err := q.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("incident repo: ListForTrip: %w", err)
	}
	defer rows.Close()

	var incidents []models.Incident
	for rows.Next() {
		var (
			inc      models.Incident
			lat, lon *float64
		)
		if err := rows.Scan(&inc.ID, &inc.TripID, &inc.Type, &inc.Description, &inc.Address, &lat, &lon, &inc.ReportedAt); err != nil {
			return nil, fmt.Errorf("incident repo: ListForTrip: scan: %w", err)
		}
		if lat != nil && lon != nil {
			inc.Location = &models.Location{Latitude: *lat, Longitude: *lon}
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("incident repo: ListForTrip: rows: %w", err)
	}

	return incidents, nil
}
