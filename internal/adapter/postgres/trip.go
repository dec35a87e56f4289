package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/internal/domain/types"
	wrap "github.com/Zubra14/verista-tracking/pkg/logger/wrapper"
	"github.com/Zubra14/verista-tracking/pkg/metrics"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

const serviceLabel = "tracking-service"

type TripRepo struct {
	db *pgxpool.Pool
}

func NewTripRepo(db *pgxpool.Pool) *TripRepo {
	return &TripRepo{db: db}
}

const tripColumns = `
	t.id, t.route_id, t.vehicle_id, t.driver_id, t.school_id, t.status,
	t.start_time, t.end_time, t.estimated_arrival, t.actual_arrival,
	t.last_latitude, t.last_longitude, t.last_speed_kmh, t.last_position_at,
	t.created_at, t.updated_at`

func scanTrip(row pgx.Row) (*models.Trip, error) {
	var (
		trip     models.Trip
		lat, lon *float64
		speed    *float64
		posAt    *time.Time
	)

	err := row.Scan(
		&trip.ID, &trip.RouteID, &trip.VehicleID, &trip.DriverID, &trip.SchoolID, &trip.Status,
		&trip.StartTime, &trip.EndTime, &trip.EstimatedArrival, &trip.ActualArrival,
		&lat, &lon, &speed, &posAt,
		&trip.CreatedAt, &trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat != nil && lon != nil && posAt != nil {
		trip.LastKnownPosition = &models.TrackedPosition{
			Latitude:  *lat,
			Longitude: *lon,
			Timestamp: *posAt,
		}
		if speed != nil {
			trip.LastKnownPosition.SpeedKmh = *speed
		}
	}

	return &trip, nil
}

func (r *TripRepo) Get(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	q := TxorDB(ctx, r.db)

	query := `SELECT` + tripColumns + ` FROM trips t WHERE t.id = $1;`

	trip, err := scanTrip(q.QueryRow(ctx, query, tripID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrTripNotFound
		}
		return nil, fmt.Errorf("trip repo: Get: %w", err)
	}

	return trip, nil
}

// Start performs the scheduled -> in_progress transition as a single
// compare-and-set. Zero rows affected covers all three refusal cases
// (absent, not owned, not scheduled) identically.
func (r *TripRepo) Start(ctx context.Context, tripID, driverID uuid.UUID, startedAt time.Time) error {
	const op = "TripRepo.Start"
	start := time.Now()

	query := `
		UPDATE trips
		SET status = 'in_progress', start_time = $3, updated_at = now()
		WHERE id = $1 AND driver_id = $2 AND status = 'scheduled';`

	cmdTag, err := TxorDB(ctx, r.db).Exec(ctx, query, tripID, driverID, startedAt)
	metrics.RecordDatabaseQuery(serviceLabel, "trip_start", err, time.Since(start))
	if err != nil {
		return wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed), fmt.Errorf("%s: %w", op, err))
	}

	if cmdTag.RowsAffected() == 0 {
		return types.ErrTripNotFound
	}

	return nil
}

// Complete performs the in_progress -> completed transition (same CAS
// shape as Start). Clearing the student mirrors is the caller's job and
// runs in the same transaction.
func (r *TripRepo) Complete(ctx context.Context, tripID, driverID uuid.UUID, endedAt time.Time) error {
	const op = "TripRepo.Complete"
	start := time.Now()

	query := `
		UPDATE trips
		SET status = 'completed', end_time = $3, actual_arrival = $3, updated_at = now()
		WHERE id = $1 AND driver_id = $2 AND status = 'in_progress';`

	cmdTag, err := TxorDB(ctx, r.db).Exec(ctx, query, tripID, driverID, endedAt)
	metrics.RecordDatabaseQuery(serviceLabel, "trip_complete", err, time.Since(start))
	if err != nil {
		return wrap.Error(wrap.WithAction(ctx, types.ActionDatabaseTransactionFailed), fmt.Errorf("%s: %w", op, err))
	}

	if cmdTag.RowsAffected() == 0 {
		return types.ErrTripNotFound
	}

	return nil
}

// Cancel is reachable from scheduled only.
func (r *TripRepo) Cancel(ctx context.Context, tripID uuid.UUID) error {
	query := `
		UPDATE trips
		SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND status = 'scheduled';`

	cmdTag, err := TxorDB(ctx, r.db).Exec(ctx, query, tripID)
	if err != nil {
		return fmt.Errorf("trip repo: Cancel: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return types.ErrTripNotFound
	}

	return nil
}

// CurrentForDriver returns the driver's in_progress trip if one exists,
// otherwise the earliest upcoming scheduled trip, otherwise nil.
func (r *TripRepo) CurrentForDriver(ctx context.Context, driverID uuid.UUID) (*models.Trip, error) {
	q := TxorDB(ctx, r.db)

	query := `
		SELECT` + tripColumns + `
		FROM trips t
		WHERE t.driver_id = $1 AND t.status IN ('in_progress', 'scheduled')
		ORDER BY CASE WHEN t.status = 'in_progress' THEN 0 ELSE 1 END, t.start_time ASC
		LIMIT 1;`

	trip, err := scanTrip(q.QueryRow(ctx, query, driverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("trip repo: CurrentForDriver: %w", err)
	}

	return trip, nil
}

// IsOwnedBy reports whether the trip exists and is assigned to the driver.
func (r *TripRepo) IsOwnedBy(ctx context.Context, tripID, driverID uuid.UUID) (bool, error) {
	q := TxorDB(ctx, r.db)

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM trips WHERE id = $1 AND driver_id = $2);`

	if err := q.QueryRow(ctx, query, tripID, driverID).Scan(&exists); err != nil {
		return false, fmt.Errorf("trip repo: IsOwnedBy: %w", err)
	}
	return exists, nil
}

// UpdateLastPosition overwrites the trip's last known position. The
// previous sample is not retained; only in_progress trips accept updates.
func (r *TripRepo) UpdateLastPosition(ctx context.Context, tripID uuid.UUID, sample models.PositionSample) error {
	query := `
		UPDATE trips
		SET last_latitude = $2, last_longitude = $3, last_speed_kmh = $4,
		    last_position_at = $5, updated_at = now()
		WHERE id = $1 AND status = 'in_progress';`

	cmdTag, err := TxorDB(ctx, r.db).Exec(ctx, query,
		tripID, sample.Latitude, sample.Longitude, sample.SpeedKmh, sample.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("trip repo: UpdateLastPosition: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return types.ErrTripNotActive
	}

	return nil
}
