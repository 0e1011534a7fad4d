// Package history keeps a local log of sync runs in SQLite, one row per
// pass, so regressions in error counts are visible without digging through
// process logs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the sync-run log.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one recorded sync pass.
type Run struct {
	ID            int64
	StartedAt     time.Time
	FinishedAt    time.Time
	Organizations []string
	TotalRepos    int
	Updated       int
	Skipped       int
	Errors        int
}

// Open opens (or creates) the run log at path and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	s := &Store{db: db, path: path}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS sync_runs (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at    TEXT NOT NULL,
		finished_at   TEXT NOT NULL,
		organizations TEXT NOT NULL,
		total_repos   INTEGER NOT NULL,
		updated       INTEGER NOT NULL,
		skipped       INTEGER NOT NULL,
		errors        INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("creating sync_runs table: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun appends one run to the log.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO sync_runs
		(started_at, finished_at, organizations, total_repos, updated, skipped, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		strings.Join(run.Organizations, ","),
		run.TotalRepos, run.Updated, run.Skipped, run.Errors,
	)
	if err != nil {
		return fmt.Errorf("recording sync run: %w", err)
	}
	return nil
}

// RecentRuns returns the latest runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, started_at, finished_at, organizations, total_repos, updated, skipped, errors
		FROM sync_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r             Run
			started, done string
			orgs          string
		)
		if err := rows.Scan(&r.ID, &started, &done, &orgs, &r.TotalRepos, &r.Updated, &r.Skipped, &r.Errors); err != nil {
			return nil, fmt.Errorf("scanning sync run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			r.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339, done); err == nil {
			r.FinishedAt = t
		}
		if orgs != "" {
			r.Organizations = strings.Split(orgs, ",")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
