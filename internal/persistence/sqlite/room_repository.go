package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/classroom-booking/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository on SQLite.
type RoomRepository struct {
	pool *ConnectionPool
}

// NewRoomRepository creates a SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

// CreateRoom inserts a new room record.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO rooms (id, name, building, floor, capacity, desks, chairs, computers, has_projector, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.DB().ExecContext(ctx, query,
		room.ID,
		room.Name,
		room.Building,
		room.Floor,
		room.Capacity,
		room.Desks,
		room.Chairs,
		room.Computers,
		boolToInt(room.HasProjector),
		boolToInt(room.IsActive),
		room.CreatedAt.UTC().Format(time.RFC3339),
		room.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapSQLError(err)
	}
	return nil
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	query := `
		SELECT id, name, building, floor, capacity, desks, chairs, computers, has_projector, is_active, created_at, updated_at
		FROM rooms WHERE id = ?
	`
	return scanRoom(r.pool.DB().QueryRowContext(ctx, query, id))
}

// UpdateRoom updates an existing room record.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	query := `
		UPDATE rooms
		SET name = ?, building = ?, floor = ?, capacity = ?, desks = ?, chairs = ?, computers = ?, has_projector = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.DB().ExecContext(ctx, query,
		room.Name,
		room.Building,
		room.Floor,
		room.Capacity,
		room.Desks,
		room.Chairs,
		room.Computers,
		boolToInt(room.HasProjector),
		boolToInt(room.IsActive),
		room.UpdatedAt.UTC().Format(time.RFC3339),
		room.ID,
	)
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

// DeleteRoom removes a room and, through the foreign key cascade, its
// occupations.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id string) error {
	result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
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

// ListRooms returns all rooms ordered by name.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	query := `
		SELECT id, name, building, floor, capacity, desks, chairs, computers, has_projector, is_active, created_at, updated_at
		FROM rooms ORDER BY name, id
	`
	rows, err := r.pool.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLError(err)
	}
	return rooms, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (persistence.Room, error) {
	var (
		room                   persistence.Room
		hasProjector, isActive int
		createdAt, updatedAt   string
	)
	err := row.Scan(
		&room.ID,
		&room.Name,
		&room.Building,
		&room.Floor,
		&room.Capacity,
		&room.Desks,
		&room.Chairs,
		&room.Computers,
		&hasProjector,
		&isActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Room{}, persistence.ErrNotFound
		}
		return persistence.Room{}, mapSQLError(err)
	}

	room.HasProjector = hasProjector != 0
	room.IsActive = isActive != 0
	if room.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Room{}, fmt.Errorf("invalid created_at for room %s: %w", room.ID, err)
	}
	if room.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Room{}, fmt.Errorf("invalid updated_at for room %s: %w", room.ID, err)
	}
	return room, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func mapSQLError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "FOREIGN KEY constraint") ||
		strings.Contains(msg, "CHECK constraint") {
		return fmt.Errorf("%w: %s", persistence.ErrConstraintViolation, msg)
	}
	return err
}
