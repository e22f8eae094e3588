// Package sqlite stores segmentation runs in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chrissnell/pcfseg/internal/storage"
	"github.com/chrissnell/pcfseg/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	created_at     TEXT NOT NULL,
	build          TEXT NOT NULL,
	gamma          REAL NOT NULL,
	normalise      INTEGER NOT NULL,
	min_arm_points INTEGER NOT NULL,
	windowed       INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS arm_segments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	chromosome TEXT NOT NULL,
	arm        TEXT NOT NULL,
	start_pos  INTEGER NOT NULL,
	end_pos    INTEGER NOT NULL,
	points     INTEGER NOT NULL,
	mean       REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_arm_segments_run_id ON arm_segments(run_id);
`

// Store is a storage.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and its schema. ":memory:"
// gives a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveRun writes run and its segments in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *storage.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, build, gamma, normalise, min_arm_points, windowed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339Nano), run.Build, run.Gamma,
		run.Normalise, run.MinArmPoints, run.Windowed)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO arm_segments (run_id, chromosome, arm, start_pos, end_pos, points, mean)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare segment insert: %w", err)
	}
	defer stmt.Close()

	for _, seg := range run.Segments {
		_, err := stmt.ExecContext(ctx, run.ID, seg.Chromosome, seg.Arm, seg.Start, seg.End, seg.Points, seg.Mean)
		if err != nil {
			return fmt.Errorf("failed to insert segment: %w", err)
		}
	}

	return tx.Commit()
}

// GetRun loads the run with the given ID.
func (s *Store) GetRun(ctx context.Context, id string) (*storage.Run, error) {
	run := &storage.Run{ID: id}
	var created string

	err := s.db.QueryRowContext(ctx, `
		SELECT created_at, build, gamma, normalise, min_arm_points, windowed
		FROM runs WHERE id = ?`, id).
		Scan(&created, &run.Build, &run.Gamma, &run.Normalise, &run.MinArmPoints, &run.Windowed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", created, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chromosome, arm, start_pos, end_pos, points, mean
		FROM arm_segments WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		seg := types.ArmSegment{RunID: id}
		if err := rows.Scan(&seg.ID, &seg.Chromosome, &seg.Arm, &seg.Start, &seg.End, &seg.Points, &seg.Mean); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		run.Segments = append(run.Segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read segments: %w", err)
	}

	return run, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
