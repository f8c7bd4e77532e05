// Package store persists extraction run history in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/cardsift/cardsift/internal/model"
)

// SQLiteStore keeps run history using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	kind         TEXT NOT NULL,
	record_count INTEGER NOT NULL,
	records      TEXT NOT NULL,
	started_at   DATETIME NOT NULL,
	finished_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Migrate creates the runs table if needed.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun persists one extraction run and returns its assigned ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run model.Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	recordsJSON, err := json.Marshal(run.Records)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal records")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, kind, record_count, records, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, string(run.Kind), run.RecordCount, string(recordsJSON),
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert run")
	}
	return run.ID, nil
}

// ListRuns returns runs ordered newest first, without their record payloads.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, kind, record_count, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var kind string
		var started, finished time.Time
		if err := rows.Scan(&r.ID, &r.Source, &kind, &r.RecordCount, &started, &finished); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Kind = model.SourceKind(kind)
		r.StartedAt = started
		r.FinishedAt = finished
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

// GetRun returns one run with its extracted records.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	var r model.Run
	var kind, recordsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, kind, record_count, records, started_at, finished_at
		 FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.Source, &kind, &r.RecordCount, &recordsJSON, &r.StartedAt, &r.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: run %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", id)
	}
	r.Kind = model.SourceKind(kind)
	if err := json.Unmarshal([]byte(recordsJSON), &r.Records); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal records")
	}
	return &r, nil
}
