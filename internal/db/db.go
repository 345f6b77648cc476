// Package db provides PostgreSQL storage for finalized interview reports.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS interview_reports (
    session_id           TEXT PRIMARY KEY,
    candidate_id         TEXT NOT NULL DEFAULT '',
    role                 TEXT NOT NULL DEFAULT '',
    company              TEXT NOT NULL DEFAULT '',
    score                DOUBLE PRECISION NOT NULL,
    summary              TEXT NOT NULL,
    strengths            JSONB NOT NULL DEFAULT '[]',
    improvements         JSONB NOT NULL DEFAULT '[]',
    skills_covered       JSONB NOT NULL DEFAULT '[]',
    requirements_summary TEXT NOT NULL,
    completion_reason    TEXT NOT NULL,
    duration_seconds     INTEGER NOT NULL,
    total_questions      INTEGER NOT NULL,
    total_responses      INTEGER NOT NULL,
    transcript           JSONB NOT NULL DEFAULT '[]',
    finalized_at         TIMESTAMPTZ NOT NULL,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_interview_reports_finalized_at ON interview_reports (finalized_at DESC);
CREATE INDEX IF NOT EXISTS idx_interview_reports_candidate ON interview_reports (candidate_id);
`

// EnsureSchema creates the report table when it does not exist yet
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
