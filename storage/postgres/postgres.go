// Package postgres provides a PostgreSQL implementation of the storage
// interface. This is intended for teams keeping a history of analysis runs.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fixscout/fixscout/storage"
)

// PostgreSQL provides storage operations using PostgreSQL.
type PostgreSQL struct {
	db *sql.DB
}

// New creates a new PostgreSQL storage instance.
func New(db *sql.DB) *PostgreSQL {
	return &PostgreSQL{db: db}
}

// NewFromDSN creates a new PostgreSQL storage instance from a connection string.
func NewFromDSN(dsn string) (*PostgreSQL, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &PostgreSQL{db: db}, nil
}

// Close closes the database connection.
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}

// Migrate creates the required database tables.
func (p *PostgreSQL) Migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			inspiration_path TEXT NOT NULL,
			target_path TEXT,
			model TEXT NOT NULL,
			findings JSONB,
			assessments JSONB,
			commits_analyzed INTEGER NOT NULL DEFAULT 0,
			prs_analyzed INTEGER NOT NULL DEFAULT 0,
			usage JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
	`

	_, err := p.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// StoreRun stores an analysis run in PostgreSQL.
func (p *PostgreSQL) StoreRun(ctx context.Context, run *storage.Run) error {
	query := `
		INSERT INTO runs (id, inspiration_path, target_path, model, findings, assessments, commits_analyzed, prs_analyzed, usage, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (id) DO UPDATE SET
			findings = EXCLUDED.findings,
			assessments = EXCLUDED.assessments,
			commits_analyzed = EXCLUDED.commits_analyzed,
			prs_analyzed = EXCLUDED.prs_analyzed,
			usage = EXCLUDED.usage
	`

	_, err := p.db.ExecContext(ctx, query,
		run.ID,
		run.InspirationPath,
		run.TargetPath,
		run.Model,
		jsonOrEmptyArray(run.FindingsJSON),
		jsonOrNull(run.AssessmentsJSON),
		run.CommitsAnalyzed,
		run.PRsAnalyzed,
		usageToJSON(run.Usage),
	)
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}

	return nil
}

// GetRun retrieves a run from PostgreSQL.
func (p *PostgreSQL) GetRun(ctx context.Context, id string) (*storage.Run, error) {
	query := `
		SELECT id, inspiration_path, target_path, model, findings, assessments, commits_analyzed, prs_analyzed, usage, created_at
		FROM runs
		WHERE id = $1
	`

	run, err := scanRun(p.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves the most recent runs, newest first.
func (p *PostgreSQL) ListRuns(ctx context.Context, limit int) ([]*storage.Run, error) {
	query := `
		SELECT id, inspiration_path, target_path, model, findings, assessments, commits_analyzed, prs_analyzed, usage, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := p.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*storage.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*storage.Run, error) {
	var run storage.Run
	var targetPath, findingsJSON, assessmentsJSON, usageJSON sql.NullString
	var createdAt time.Time

	if err := row.Scan(
		&run.ID,
		&run.InspirationPath,
		&targetPath,
		&run.Model,
		&findingsJSON,
		&assessmentsJSON,
		&run.CommitsAnalyzed,
		&run.PRsAnalyzed,
		&usageJSON,
		&createdAt,
	); err != nil {
		return nil, err
	}

	run.TargetPath = targetPath.String
	run.FindingsJSON = findingsJSON.String
	run.AssessmentsJSON = assessmentsJSON.String
	run.Usage = usageFromJSON(usageJSON.String)
	run.CreatedAt = createdAt.Format(time.RFC3339)

	return &run, nil
}

// Verify PostgreSQL implements Storage at compile time.
var _ storage.Storage = (*PostgreSQL)(nil)
