// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

// Package journal keeps a SQLite record of annotation runs: which listing
// was processed, its digest before and after, and how the run ended.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dotandev/hbclabel/internal/logger"
	_ "modernc.org/sqlite"
)

// SchemaVersion tracks the database schema version for migrations
const SchemaVersion = 1

// Outcome values recorded for a run.
const (
	OutcomeAnnotated        = "annotated"
	OutcomeUnchanged        = "unchanged"
	OutcomeAlreadyAnnotated = "already-annotated"
	OutcomeFailed           = "failed"
)

// Entry is one recorded run.
type Entry struct {
	ID        int64
	CreatedAt time.Time
	Path      string
	InputSHA  string
	OutputSHA string
	Functions int
	Annotated int
	Branches  int
	Labels    int
	Outcome   string
	Error     string
	Duration  time.Duration
	Version   string
}

// Store manages run persistence in SQLite
type Store struct {
	db *sql.DB
}

// Open creates or opens the journal at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := os.Chmod(path, 0600); err != nil {
		logger.Logger.Warn("Failed to set journal permissions", "error", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		path TEXT NOT NULL,
		input_sha TEXT,
		output_sha TEXT,
		functions INTEGER NOT NULL,
		annotated INTEGER NOT NULL,
		branches INTEGER NOT NULL,
		labels INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT,
		duration_ms INTEGER NOT NULL,
		version TEXT,
		schema_version INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_path ON runs(path);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Record persists e and fills in its ID and CreatedAt.
func (s *Store) Record(ctx context.Context, e *Entry) error {
	if e.Path == "" {
		return fmt.Errorf("journal entry path is required")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO runs (
		created_at, path, input_sha, output_sha, functions, annotated,
		branches, labels, outcome, error, duration_ms, version, schema_version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := s.db.ExecContext(ctx, query,
		e.CreatedAt.Format(time.RFC3339Nano), e.Path, e.InputSHA, e.OutputSHA,
		e.Functions, e.Annotated, e.Branches, e.Labels,
		e.Outcome, e.Error, e.Duration.Milliseconds(), e.Version, SchemaVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}

	logger.Logger.Debug("Run recorded", "id", e.ID, "path", e.Path, "outcome", e.Outcome)
	return nil
}

// List returns recent runs, newest first. An empty path lists all runs.
func (s *Store) List(ctx context.Context, path string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
	SELECT id, created_at, path, input_sha, output_sha, functions, annotated,
	       branches, labels, outcome, error, duration_ms, version
	FROM runs
	WHERE ? = '' OR path = ?
	ORDER BY id DESC
	LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, path, path, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		var durationMS int64
		if err := rows.Scan(
			&e.ID, &createdAt, &e.Path, &e.InputSHA, &e.OutputSHA,
			&e.Functions, &e.Annotated, &e.Branches, &e.Labels,
			&e.Outcome, &e.Error, &durationMS, &e.Version,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// LastOutput returns the output digest of the latest annotated run of path,
// or "" when there is none.
func (s *Store) LastOutput(ctx context.Context, path string) (string, error) {
	var sha string
	err := s.db.QueryRowContext(ctx,
		`SELECT output_sha FROM runs WHERE path = ? AND outcome = ? ORDER BY id DESC LIMIT 1`,
		path, OutcomeAnnotated,
	).Scan(&sha)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query last output: %w", err)
	}
	return sha, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
