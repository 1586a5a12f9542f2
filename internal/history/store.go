// =============================================================================
// Invoice Report Automation - Run History
// =============================================================================
//
// This module keeps a ledger of pipeline runs in a SQLite database so that
// operators can see when the batch last ran, how many invoices it saw, and
// why it failed.
//
// TABLE:
//
//   runs(id, started_at, finished_at, status, stage, records,
//        total_amount, email_sent, error)
//
//   total_amount is stored as decimal text so sums are never rounded by the
//   database.
//
// =============================================================================

package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	apperrors "github.com/ginjaninja78/invoice-report-automation/internal/errors"
	"github.com/ginjaninja78/invoice-report-automation/pkg/utils"
)

const opHistory = "history"

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// DefaultListLimit is used by List when limit is not positive.
const DefaultListLimit = 20

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	status TEXT NOT NULL,
	stage TEXT NOT NULL DEFAULT '',
	records INTEGER NOT NULL DEFAULT 0,
	total_amount TEXT NOT NULL DEFAULT '0',
	email_sent INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at);
`

// Run is one row of the ledger.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      string
	Stage       string
	Records     int
	TotalAmount decimal.Decimal
	EmailSent   bool
	Error       string
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store is the SQLite-backed run ledger.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if err := utils.EnsureParentDir(path); err != nil {
		return nil, apperrors.New(apperrors.KindIO, opHistory,
			fmt.Errorf("failed to create directory for %s: %w", path, err))
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, apperrors.New(apperrors.KindIO, opHistory,
			fmt.Errorf("failed to open %s: %w", path, err))
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.New(apperrors.KindIO, opHistory,
			fmt.Errorf("failed to create schema: %w", err))
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a run. Recording the same ID twice replaces the row.
func (s *Store) Record(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, started_at, finished_at, status, stage, records, total_amount, email_sent, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Status, run.Stage,
		run.Records, run.TotalAmount.String(), run.EmailSent, run.Error)
	if err != nil {
		return apperrors.New(apperrors.KindIO, opHistory,
			fmt.Errorf("failed to record run %s: %w", run.ID, err))
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, status, stage, records, total_amount, email_sent, error
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.New(apperrors.KindIO, opHistory,
			fmt.Errorf("failed to list runs: %w", err))
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run   Run
			total string
		)
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status, &run.Stage,
			&run.Records, &total, &run.EmailSent, &run.Error); err != nil {
			return nil, apperrors.New(apperrors.KindIO, opHistory,
				fmt.Errorf("failed to read run: %w", err))
		}
		run.TotalAmount, err = decimal.NewFromString(total)
		if err != nil {
			return nil, apperrors.New(apperrors.KindIO, opHistory,
				fmt.Errorf("run %s has invalid total %q: %w", run.ID, total, err))
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.New(apperrors.KindIO, opHistory, err)
	}

	return runs, nil
}
