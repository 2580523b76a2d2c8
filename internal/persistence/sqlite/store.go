package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order; each entry runs at most once, tracked in
// the schema_migrations table.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL UNIQUE,
		building      TEXT NOT NULL DEFAULT '',
		floor         INTEGER NOT NULL DEFAULT 0,
		capacity      INTEGER NOT NULL DEFAULT 0,
		desks         INTEGER NOT NULL DEFAULT 0,
		chairs        INTEGER NOT NULL DEFAULT 0,
		computers     INTEGER NOT NULL DEFAULT 0,
		has_projector INTEGER NOT NULL DEFAULT 0,
		is_active     INTEGER NOT NULL DEFAULT 1,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS occupations (
		id          TEXT PRIMARY KEY,
		room_id     TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		responsible TEXT NOT NULL,
		label       TEXT NOT NULL,
		start_date  TEXT NOT NULL,
		end_date    TEXT NOT NULL,
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL,
		weekdays    INTEGER NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_occupations_room_id ON occupations(room_id)`,
}

// Store bundles the repositories backed by a single SQLite database.
type Store struct {
	pool        *ConnectionPool
	Rooms       *RoomRepository
	Occupations *OccupationRepository
}

// Open connects to the SQLite database named by dsn and wires the
// repositories. Call Migrate before first use.
func Open(dsn string) (*Store, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}
	return &Store{
		pool:        pool,
		Rooms:       NewRoomRepository(pool),
		Occupations: NewOccupationRepository(pool),
	}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies any pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.DB().ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var current int
		if err := tx.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		for i := current; i < len(migrations); i++ {
			if _, err := tx.Exec(migrations[i]); err != nil {
				return fmt.Errorf("migration %d failed: %w", i+1, err)
			}
			if _, err := tx.Exec(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))`, i+1); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", i+1, err)
			}
		}
		return nil
	})
}
