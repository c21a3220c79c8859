// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite ledger of edition download attempts. The
// ledger is informational: completeness checks look at the archive
// directory, not at this table.
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

	"github.com/pdiddy/edition-archiver/pkg/types"
)

const defaultLimit = 100

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			version INTEGER NOT NULL,
			url TEXT,
			path TEXT NOT NULL,
			status TEXT NOT NULL,
			bytes INTEGER NOT NULL DEFAULT 0,
			error TEXT,
			at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_date ON attempts(date, version)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_status ON attempts(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends one attempt. It implements acquire.Recorder.
func (s *Store) Record(ctx context.Context, a types.Attempt) error {
	at := a.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (date, version, url, path, status, bytes, error, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Date.String(), int(a.Version), a.URL, a.Path, string(a.Status), a.Bytes, a.Error,
		at.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording attempt %s: %w", a.Key(), err)
	}
	return nil
}

// Filter narrows List results. Zero fields do not filter.
type Filter struct {
	Begin  types.EditionDate
	End    types.EditionDate
	Status types.AttemptStatus

	// Limit caps the number of rows (default 100; negative means no cap).
	Limit int
}

// List returns attempts ordered by date, version and time.
func (s *Store) List(ctx context.Context, f Filter) ([]types.Attempt, error) {
	var where []string
	var args []any
	if !f.Begin.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.Begin.String())
	}
	if !f.End.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, f.End.String())
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}

	q := `SELECT date, version, url, path, status, bytes, error, at FROM attempts`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY date, version, id"

	limit := f.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying attempts: %w", err)
	}
	defer rows.Close()

	var attempts []types.Attempt
	for rows.Next() {
		var (
			date, status, at string
			url, errText     sql.NullString
			version          int
			a                types.Attempt
		)
		if err := rows.Scan(&date, &version, &url, &a.Path, &status, &a.Bytes, &errText, &at); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}
		if a.Date, err = types.ParseEditionDate(date); err != nil {
			return nil, err
		}
		a.Version = types.Version(version)
		a.URL = url.String
		a.Status = types.AttemptStatus(status)
		a.Error = errText.String
		if t, perr := time.Parse(time.RFC3339Nano, at); perr == nil {
			a.At = t
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
