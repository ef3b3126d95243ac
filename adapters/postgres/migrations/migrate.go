package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one versioned schema step. Statements run inside a single
// transaction per migration.
type migration struct {
	Version string
	SQL     string
}

// schema lists migrations in apply order. Versions already recorded in
// schema_migrations are skipped.
var schema = []migration{
	{
		Version: "001_datasets",
		SQL: `
		CREATE TABLE IF NOT EXISTS datasets (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL DEFAULT '',
			original_filename TEXT NOT NULL,
			file_path TEXT,
			file_size BIGINT,
			row_count INTEGER,
			column_count INTEGER,
			missing_rate DOUBLE PRECISION,
			target_column TEXT,
			status TEXT NOT NULL DEFAULT 'processing',
			error_message TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_datasets_created_at ON datasets(created_at DESC);`,
	},
	{
		Version: "002_pipelines",
		SQL: `
		CREATE TABLE IF NOT EXISTS pipelines (
			id TEXT PRIMARY KEY,
			dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
			task_type TEXT NOT NULL,
			tier INTEGER NOT NULL,
			config JSONB NOT NULL,
			profile JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_pipelines_dataset ON pipelines(dataset_id, created_at DESC);`,
	},
	{
		Version: "003_training_runs",
		SQL: `
		CREATE TABLE IF NOT EXISTS training_runs (
			id TEXT PRIMARY KEY,
			pipeline_id TEXT NOT NULL REFERENCES pipelines(id) ON DELETE CASCADE,
			results JSONB,
			best_model TEXT,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_training_runs_pipeline ON training_runs(pipeline_id, started_at DESC);`,
	},
}

// Migrator handles database schema migrations
type Migrator struct {
	db *sql.DB
}

// NewMigrator creates a new migrator
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

// Up executes all pending migrations
func (m *Migrator) Up(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, mig := range schema {
		if applied[mig.Version] {
			continue
		}
		if err := m.apply(ctx, mig); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", mig.Version, err)
		}
	}
	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (m *Migrator) apply(ctx context.Context, mig migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version) VALUES ($1)`, mig.Version); err != nil {
		return err
	}
	return tx.Commit()
}
