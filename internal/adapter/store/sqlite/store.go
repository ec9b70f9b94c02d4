// Package sqlite persists triage runs and per-finding verdicts, so repeated
// runs over the same repository can be audited later.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bkyoung/sectriage/internal/usecase/analyze"
)

// Run captures one triage invocation.
type Run struct {
	ID         string
	Timestamp  time.Time
	Repository string
	PRNumber   int
	Provider   string
	Model      string
	Total      int
	Kept       int
	Excluded   int
	Failed     int
}

// Store implements verdict persistence using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for an in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- Metadata about each triage run
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		repository TEXT NOT NULL,
		pr_number INTEGER NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		total INTEGER NOT NULL,
		kept INTEGER NOT NULL,
		excluded INTEGER NOT NULL,
		failed INTEGER NOT NULL
	);

	-- Per-finding verdicts within a run
	CREATE TABLE IF NOT EXISTS verdicts (
		verdict_id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		file TEXT NOT NULL,
		line INTEGER NOT NULL,
		severity TEXT,
		description TEXT,
		keep_finding INTEGER NOT NULL,
		confidence REAL NOT NULL,
		exclusion_reason TEXT,
		justification TEXT,
		error TEXT,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_verdicts_run ON verdicts(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_repository ON runs(repository, timestamp);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// SaveRun records a run and all of its outcomes in one transaction.
func (s *Store) SaveRun(ctx context.Context, run Run, outcomes []analyze.Outcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, timestamp, repository, pr_number, provider, model, total, kept, excluded, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Timestamp.Unix(), run.Repository, run.PRNumber,
		run.Provider, run.Model, run.Total, run.Kept, run.Excluded, run.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO verdicts (run_id, file, line, severity, description, keep_finding, confidence, exclusion_reason, justification, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare verdict insert: %w", err)
	}
	defer stmt.Close()

	for _, outcome := range outcomes {
		errText := ""
		if outcome.Err != nil {
			errText = outcome.Err.Error()
		}
		_, err := stmt.ExecContext(ctx,
			run.ID,
			outcome.Finding.File(),
			outcome.Finding.Line(),
			outcome.Finding.Severity(),
			outcome.Finding.Description(),
			outcome.Result.KeepFinding,
			outcome.Result.ConfidenceScore,
			outcome.Result.ExclusionReason,
			outcome.Result.Justification,
			errText,
		)
		if err != nil {
			return fmt.Errorf("insert verdict: %w", err)
		}
	}

	return tx.Commit()
}

// RecentRuns returns up to limit runs for a repository, newest first.
func (s *Store) RecentRuns(ctx context.Context, repository string, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, timestamp, repository, pr_number, provider, model, total, kept, excluded, failed
		 FROM runs WHERE repository = ? ORDER BY timestamp DESC LIMIT ?`,
		repository, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var ts int64
		if err := rows.Scan(&run.ID, &ts, &run.Repository, &run.PRNumber,
			&run.Provider, &run.Model, &run.Total, &run.Kept, &run.Excluded, &run.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Timestamp = time.Unix(ts, 0).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
