package migration

import (
	"context"

	"gostatcheck/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createCheckRunsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create check_runs table", err)
	}

	if err := r.addFingerprintColumns(ctx, db); err != nil {
		return errors.DatabaseError("failed to add check_runs fingerprint columns", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	return nil
}

// Statements returns the DDL Run executes, in order
func (r *MigrationRunner) Statements() []string {
	return []string{createCheckRunsSQL, addFingerprintColumnsSQL, createIndexesSQL}
}

const createCheckRunsSQL = `
	CREATE TABLE IF NOT EXISTS check_runs (
		id UUID PRIMARY KEY,
		kind VARCHAR(20) NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		summary JSONB NOT NULL,
		rows JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

const addFingerprintColumnsSQL = `
	DO $$
	BEGIN
		IF NOT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = 'check_runs' AND column_name = 'fingerprint'
		) THEN
			ALTER TABLE check_runs ADD COLUMN fingerprint VARCHAR(64) NOT NULL DEFAULT '';
		END IF;

		IF NOT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = 'check_runs' AND column_name = 'frequency'
		) THEN
			ALTER TABLE check_runs ADD COLUMN frequency INTEGER NOT NULL DEFAULT 1;
			ALTER TABLE check_runs ADD COLUMN runs INTEGER NOT NULL DEFAULT 1;
		END IF;
	END $$;
`

const createIndexesSQL = `
	CREATE INDEX IF NOT EXISTS idx_check_runs_created_at ON check_runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_check_runs_kind ON check_runs(kind);
`

func (r *MigrationRunner) createCheckRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, createCheckRunsSQL)
	return err
}

func (r *MigrationRunner) addFingerprintColumns(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, addFingerprintColumnsSQL)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, createIndexesSQL)
	return err
}
