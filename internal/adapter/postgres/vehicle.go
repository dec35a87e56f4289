package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/internal/domain/types"
	"github.com/Zubra14/verista-tracking/pkg/postgres"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

type VehicleRepo struct {
	db *pgxpool.Pool
}

func NewVehicleRepo(db *pgxpool.Pool) *VehicleRepo {
	return &VehicleRepo{db: db}
}

// UpsertLocation records the vehicle's latest sample. One row per vehicle,
// overwritten on every ingest.
func (r *VehicleRepo) UpsertLocation(ctx context.Context, sample models.PositionSample) error {
	query := `
		INSERT INTO vehicle_locations (vehicle_id, latitude, longitude, speed_kmh, is_fallback, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (vehicle_id) DO UPDATE
		SET latitude = EXCLUDED.latitude,
		    longitude = EXCLUDED.longitude,
		    speed_kmh = EXCLUDED.speed_kmh,
		    is_fallback = EXCLUDED.is_fallback,
		    recorded_at = EXCLUDED.recorded_at;`

	_, err := TxorDB(ctx, r.db).Exec(ctx, query,
		sample.VehicleID, sample.Latitude, sample.Longitude,
		sample.SpeedKmh, sample.IsFallback, sample.Timestamp,
	)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return types.ErrVehicleNotFound
		}
		return fmt.Errorf("vehicle repo: UpsertLocation: %w", err)
	}

	return nil
}

// GetLocation returns the vehicle's latest recorded sample.
func (r *VehicleRepo) GetLocation(ctx context.Context, vehicleID uuid.UUID) (*models.PositionSample, error) {
	q := TxorDB(ctx, r.db)

	query := `
		SELECT vehicle_id, latitude, longitude, speed_kmh, is_fallback, recorded_at
		FROM vehicle_locations
		WHERE vehicle_id = $1;`

	var sample models.PositionSample
	err := q.QueryRow(ctx, query, vehicleID).Scan(
		&sample.VehicleID, &sample.Latitude, &sample.Longitude,
		&sample.SpeedKmh, &sample.IsFallback, &sample.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrVehicleNotFound
		}
		return nil, fmt.Errorf("vehicle repo: GetLocation: %w", err)
	}

	return &sample, nil
}

// VehicleForDriver resolves the vehicle currently assigned to the driver.
func (r *VehicleRepo) VehicleForDriver(ctx context.Context, driverID uuid.UUID) (uuid.UUID, error) {
	q := TxorDB(ctx, r.db)

	var vehicleID uuid.UUID
	query := `SELECT id FROM vehicles WHERE driver_id = $1;`

	if err := q.QueryRow(ctx, query, driverID).Scan(&vehicleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, types.ErrVehicleNotFound
		}
		return uuid.Nil, fmt.Errorf("vehicle repo: VehicleForDriver: %w", err)
	}

	return vehicleID, nil
}
