// Package gallery persists the owner's profile and frame collection.
package gallery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/IbbyMan/citypane/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS profile (
	id           INTEGER PRIMARY KEY CHECK (id = 1),
	name         TEXT NOT NULL,
	home_city_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS frames (
	uuid       TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	nickname   TEXT NOT NULL,
	city_id    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_frames_created_at ON frames(created_at);
`

// Store is the SQLite-backed gallery database.
type Store struct {
	db *sqlx.DB
}

// OpenStore opens (creating if needed) the gallery database at path and
// applies the schema. Use ":memory:" for tests.
func OpenStore(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open gallery db: %w", err)
	}
	// SQLite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply gallery schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks database liveness for health checks.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Profile returns the owner's profile, reporting false when onboarding has not
// happened yet.
func (s *Store) Profile(ctx context.Context) (models.Profile, bool, error) {
	var p models.Profile
	err := s.db.GetContext(ctx, &p, `SELECT name, home_city_id FROM profile WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, false, nil
	}
	if err != nil {
		return models.Profile{}, false, fmt.Errorf("load profile: %w", err)
	}
	return p, true, nil
}

// SaveProfile writes the single profile row.
func (s *Store) SaveProfile(ctx context.Context, p models.Profile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profile (id, name, home_city_id) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, home_city_id = excluded.home_city_id`,
		p.Name, p.HomeCityID)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Frames returns all frames, oldest first.
func (s *Store) Frames(ctx context.Context) ([]models.Frame, error) {
	var frames []models.Frame
	err := s.db.SelectContext(ctx, &frames,
		`SELECT uuid, type, nickname, city_id, created_at FROM frames ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("load frames: %w", err)
	}
	return frames, nil
}

// CountFrames returns the number of persisted frames.
func (s *Store) CountFrames(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM frames`); err != nil {
		return 0, fmt.Errorf("count frames: %w", err)
	}
	return n, nil
}

// InsertFrame persists a new frame.
func (s *Store) InsertFrame(ctx context.Context, f models.Frame) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO frames (uuid, type, nickname, city_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		f.UUID, f.Type, f.Nickname, f.CityID, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert frame: %w", err)
	}
	return nil
}

// DeleteFrame removes a frame by UUID, reporting whether it existed.
func (s *Store) DeleteFrame(ctx context.Context, uuid string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM frames WHERE uuid = ?`, uuid)
	if err != nil {
		return false, fmt.Errorf("delete frame: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete frame: %w", err)
	}
	return n > 0, nil
}

// FrameByUUID returns a single frame.
func (s *Store) FrameByUUID(ctx context.Context, uuid string) (models.Frame, bool, error) {
	var f models.Frame
	err := s.db.GetContext(ctx, &f,
		`SELECT uuid, type, nickname, city_id, created_at FROM frames WHERE uuid = ?`, uuid)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Frame{}, false, nil
	}
	if err != nil {
		return models.Frame{}, false, fmt.Errorf("load frame: %w", err)
	}
	return f, true, nil
}
