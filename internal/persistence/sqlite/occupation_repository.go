package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/classroom-booking/internal/booking"
	"github.com/example/classroom-booking/internal/persistence"
)

// OccupationRepository implements persistence.OccupationRepository on SQLite.
type OccupationRepository struct {
	pool *ConnectionPool
}

// NewOccupationRepository creates a SQLite occupation repository.
func NewOccupationRepository(pool *ConnectionPool) *OccupationRepository {
	return &OccupationRepository{pool: pool}
}

// CreateOccupation persists a new occupation after re-running conflict
// detection against the room's occupations inside the write transaction.
// This is the authoritative check: an optimistic precheck that raced another
// writer loses here with *booking.ConflictError instead of corrupting the
// store.
func (r *OccupationRepository) CreateOccupation(ctx context.Context, occupation booking.Occupation) error {
	if occupation.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if err := occupation.Validate(); err != nil {
		return err
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := listForRoomTx(tx, occupation.RoomID)
		if err != nil {
			return err
		}
		if conflicting := booking.FirstConflict(occupation, existing); conflicting != nil {
			return &booking.ConflictError{Conflicting: *conflicting}
		}

		query := `
			INSERT INTO occupations (id, room_id, responsible, label, start_date, end_date, start_time, end_time, weekdays, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = tx.Exec(query,
			occupation.ID,
			occupation.RoomID,
			occupation.Responsible,
			occupation.Label,
			occupation.Dates.Start.String(),
			occupation.Dates.End.String(),
			occupation.Window.Start.String(),
			occupation.Window.End.String(),
			int(occupation.Weekdays),
			occupation.CreatedAt.UTC().Format(time.RFC3339),
			occupation.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return mapSQLError(err)
		}
		return nil
	})
}

// GetOccupation retrieves an occupation by ID.
func (r *OccupationRepository) GetOccupation(ctx context.Context, id string) (booking.Occupation, error) {
	query := occupationColumns + ` WHERE id = ?`
	return scanOccupation(r.pool.DB().QueryRowContext(ctx, query, id))
}

// DeleteOccupation removes an occupation.
func (r *OccupationRepository) DeleteOccupation(ctx context.Context, id string) error {
	result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM occupations WHERE id = ?`, id)
	if err != nil {
		return mapSQLError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListOccupationsForRoom returns the room's occupations in creation order.
func (r *OccupationRepository) ListOccupationsForRoom(ctx context.Context, roomID string) ([]booking.Occupation, error) {
	query := occupationColumns + ` WHERE room_id = ? ORDER BY created_at, id`
	rows, err := r.pool.DB().QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()
	return collectOccupations(rows)
}

const occupationColumns = `
	SELECT id, room_id, responsible, label, start_date, end_date, start_time, end_time, weekdays, created_at, updated_at
	FROM occupations`

func listForRoomTx(tx *sql.Tx, roomID string) ([]booking.Occupation, error) {
	rows, err := tx.Query(occupationColumns+` WHERE room_id = ? ORDER BY created_at, id`, roomID)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()
	return collectOccupations(rows)
}

func collectOccupations(rows *sql.Rows) ([]booking.Occupation, error) {
	var occupations []booking.Occupation
	for rows.Next() {
		occupation, err := scanOccupation(rows)
		if err != nil {
			return nil, err
		}
		occupations = append(occupations, occupation)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLError(err)
	}
	return occupations, nil
}

func scanOccupation(row rowScanner) (booking.Occupation, error) {
	var (
		occupation                             booking.Occupation
		startDate, endDate, startTime, endTime string
		weekdays                               int
		createdAt, updatedAt                   string
	)
	err := row.Scan(
		&occupation.ID,
		&occupation.RoomID,
		&occupation.Responsible,
		&occupation.Label,
		&startDate,
		&endDate,
		&startTime,
		&endTime,
		&weekdays,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return booking.Occupation{}, persistence.ErrNotFound
		}
		return booking.Occupation{}, mapSQLError(err)
	}

	if occupation.Dates.Start, err = booking.ParseDate(startDate); err != nil {
		return booking.Occupation{}, fmt.Errorf("invalid start_date for occupation %s: %w", occupation.ID, err)
	}
	if occupation.Dates.End, err = booking.ParseDate(endDate); err != nil {
		return booking.Occupation{}, fmt.Errorf("invalid end_date for occupation %s: %w", occupation.ID, err)
	}
	if occupation.Window.Start, err = booking.ParseTimeOfDay(startTime); err != nil {
		return booking.Occupation{}, fmt.Errorf("invalid start_time for occupation %s: %w", occupation.ID, err)
	}
	if occupation.Window.End, err = booking.ParseTimeOfDay(endTime); err != nil {
		return booking.Occupation{}, fmt.Errorf("invalid end_time for occupation %s: %w", occupation.ID, err)
	}
	if weekdays < 0 || weekdays > 0x7F {
		return booking.Occupation{}, fmt.Errorf("invalid weekday mask %d for occupation %s", weekdays, occupation.ID)
	}
	occupation.Weekdays = booking.WeekdaySet(weekdays)
	if occupation.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return booking.Occupation{}, fmt.Errorf("invalid created_at for occupation %s: %w", occupation.ID, err)
	}
	if occupation.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return booking.Occupation{}, fmt.Errorf("invalid updated_at for occupation %s: %w", occupation.ID, err)
	}
	return occupation, nil
}
