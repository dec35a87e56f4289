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
	"github.com/Zubra14/verista-tracking/pkg/metrics"
	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

type StudentRepo struct {
	db *pgxpool.Pool
}

func NewStudentRepo(db *pgxpool.Pool) *StudentRepo {
	return &StudentRepo{db: db}
}

// GetTripStudent loads the roster row for one student on one trip.
func (r *StudentRepo) GetTripStudent(ctx context.Context, tripID, studentID uuid.UUID) (*models.TripStudent, error) {
	q := TxorDB(ctx, r.db)

	query := `
		SELECT trip_id, student_id, status, updated_at
		FROM trip_students
		WHERE trip_id = $1 AND student_id = $2;`

	var ts models.TripStudent
	err := q.QueryRow(ctx, query, tripID, studentID).
		Scan(&ts.TripID, &ts.StudentID, &ts.Status, &ts.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrStudentNotFound
		}
		return nil, fmt.Errorf("student repo: GetTripStudent: %w", err)
	}

	return &ts, nil
}

// UpdateStatus overwrites the roster row's status unconditionally.
// Concurrent writers race under last-writer-wins.
func (r *StudentRepo) UpdateStatus(ctx context.Context, tripID, studentID uuid.UUID, status types.StudentStatus, at time.Time) error {
	start := time.Now()

	query := `
		UPDATE trip_students
		SET status = $3, updated_at = $4
		WHERE trip_id = $1 AND student_id = $2;`

	cmdTag, err := TxorDB(ctx, r.db).Exec(ctx, query, tripID, studentID, status, at)
	metrics.RecordDatabaseQuery(serviceLabel, "student_status_update", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("student repo: UpdateStatus: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return types.ErrStudentNotFound
	}

	return nil
}

// UpdateCurrentStatus mirrors the roster status onto the student record.
// current_trip_id is attached on pickup only; it stays put for every
// other status and is cleared exclusively at trip completion.
func (r *StudentRepo) UpdateCurrentStatus(ctx context.Context, studentID, tripID uuid.UUID, status types.StudentStatus) error {
	query := `
		UPDATE students
		SET current_status = $2,
		    current_trip_id = CASE WHEN $2 = 'picked_up' THEN $3 ELSE current_trip_id END
		WHERE id = $1;`

	cmdTag, err := TxorDB(ctx, r.db).Exec(ctx, query, studentID, status, tripID)
	if err != nil {
		return fmt.Errorf("student repo: UpdateCurrentStatus: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return types.ErrStudentNotFound
	}

	return nil
}

// ClearCurrentTrip detaches every student still pointing at the trip.
// Runs at trip completion so stale pointers never outlive the trip.
func (r *StudentRepo) ClearCurrentTrip(ctx context.Context, tripID uuid.UUID) error {
	query := `UPDATE students SET current_trip_id = NULL WHERE current_trip_id = $1;`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query, tripID); err != nil {
		return fmt.Errorf("student repo: ClearCurrentTrip: %w", err)
	}
	return nil
}

// ListRoster returns the trip's roster, restricted to trips owned by the
// driver. An empty slice with no error means the trip is not visible.
func (r *StudentRepo) ListRoster(ctx context.Context, tripID, driverID uuid.UUID) ([]models.RosterEntry, error) {
	q := TxorDB(ctx, r.db)

	query := `
		SELECT ts.student_id, s.name, ts.trip_id, ts.status, ts.updated_at
		FROM trip_students ts
		JOIN students s ON s.id = ts.student_id
		JOIN trips t ON t.id = ts.trip_id
		WHERE ts.trip_id = $1 AND t.driver_id = $2
		ORDER BY s.name;`

	rows, err := q.Query(ctx, query, tripID, driverID)
	if err != nil {
		return nil, fmt.Errorf("student repo: ListRoster: %w", err)
	}
	defer rows.Close()

	var roster []models.RosterEntry
	for rows.Next() {
		var e models.RosterEntry
		if err := rows.Scan(&e.StudentID, &e.Name, &e.TripID, &e.Status, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("student repo: ListRoster: scan: %w", err)
		}
		roster = append(roster, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("student repo: ListRoster: rows: %w", err)
	}

	return roster, nil
}

// RosterStudentIDs returns the ids of every student assigned to the trip.
func (r *StudentRepo) RosterStudentIDs(ctx context.Context, tripID uuid.UUID) ([]uuid.UUID, error) {
	q := TxorDB(ctx, r.db)

	query := `SELECT student_id FROM trip_students WHERE trip_id = $1;`

	rows, err := q.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("student repo: RosterStudentIDs: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("student repo: RosterStudentIDs: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("student repo: RosterStudentIDs: rows: %w", err)
	}

	return ids, nil
}

// IsParentOf reports whether the user is registered as the student's parent.
func (r *StudentRepo) IsParentOf(ctx context.Context, parentID, studentID uuid.UUID) (bool, error) {
	q := TxorDB(ctx, r.db)

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM students WHERE id = $1 AND parent_id = $2);`

	if err := q.QueryRow(ctx, query, studentID, parentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("student repo: IsParentOf: %w", err)
	}
	return exists, nil
}
