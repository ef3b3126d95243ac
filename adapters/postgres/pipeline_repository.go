package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"autopipe/domain/core"
	"autopipe/domain/pipeline"
	"autopipe/domain/profile"
	"autopipe/internal/errors"
	"autopipe/ports"
)

// pipelineRepository implements the PipelineRepository interface. The
// configuration and profile are stored as JSONB documents exactly as
// produced, so a stored pipeline replays byte-identically.
type pipelineRepository struct {
	db *sqlx.DB
}

// NewPipelineRepository creates a new pipeline repository
func NewPipelineRepository(db *sqlx.DB) ports.PipelineRepository {
	return &pipelineRepository{db: db}
}

// Create inserts a new pipeline record
func (r *pipelineRepository) Create(ctx context.Context, rec *pipeline.Record) error {
	configJSON, err := json.Marshal(rec.Config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal pipeline config")
	}
	profileJSON, err := json.Marshal(rec.Profile)
	if err != nil {
		return errors.Wrap(err, "failed to marshal dataset profile")
	}

	query := `INSERT INTO pipelines (
		id, dataset_id, task_type, tier, config, profile, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.DatasetID, rec.TaskType, rec.Tier, configJSON, profileJSON, rec.CreatedAt,
	)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError,
			errors.Wrap(err, "failed to create pipeline"))
	}
	return nil
}

// GetByID retrieves a pipeline record by its ID
func (r *pipelineRepository) GetByID(ctx context.Context, id core.PipelineID) (*pipeline.Record, error) {
	query := `SELECT id, dataset_id, task_type, tier, config, profile, created_at
	FROM pipelines WHERE id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetLatestForDataset retrieves the most recent pipeline for a dataset
func (r *pipelineRepository) GetLatestForDataset(ctx context.Context, datasetID core.DatasetID) (*pipeline.Record, error) {
	query := `SELECT id, dataset_id, task_type, tier, config, profile, created_at
	FROM pipelines WHERE dataset_id = $1
	ORDER BY created_at DESC
	LIMIT 1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, datasetID))
}

func (r *pipelineRepository) scanOne(row *sql.Row) (*pipeline.Record, error) {
	var rec pipeline.Record
	var configJSON, profileJSON []byte

	err := row.Scan(
		&rec.ID, &rec.DatasetID, &rec.TaskType, &rec.Tier,
		&configJSON, &profileJSON, &rec.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("pipeline")
		}
		return nil, errors.WithCode(errors.CodeDatabaseError,
			errors.Wrap(err, "failed to get pipeline"))
	}

	rec.Config = &pipeline.Config{}
	if err := json.Unmarshal(configJSON, rec.Config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal pipeline config")
	}
	if len(profileJSON) > 0 {
		rec.Profile = &profile.DatasetProfile{}
		if err := json.Unmarshal(profileJSON, rec.Profile); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal dataset profile")
		}
	}
	return &rec, nil
}
