package postgres

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"autopipe/domain/core"
	"autopipe/internal/errors"
	"autopipe/ports"
)

// metricsRepository implements the MetricsRepository interface
type metricsRepository struct {
	db *sqlx.DB
}

// NewMetricsRepository creates a new metrics repository
func NewMetricsRepository(db *sqlx.DB) ports.MetricsRepository {
	return &metricsRepository{db: db}
}

// Save inserts a training run
func (r *metricsRepository) Save(ctx context.Context, run *ports.TrainingRun) error {
	resultsJSON, err := json.Marshal(run.Results)
	if err != nil {
		return errors.Wrap(err, "failed to marshal training results")
	}

	query := `INSERT INTO training_runs (
		id, pipeline_id, results, best_model, started_at, finished_at
	) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query,
		run.ID, run.PipelineID, resultsJSON, run.BestModel, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError,
			errors.Wrap(err, "failed to save training run"))
	}
	return nil
}

// GetByPipeline retrieves training runs for a pipeline, newest first
func (r *metricsRepository) GetByPipeline(ctx context.Context, pipelineID core.PipelineID) ([]*ports.TrainingRun, error) {
	query := `SELECT id, pipeline_id, results, COALESCE(best_model, '') as best_model, started_at, finished_at
	FROM training_runs WHERE pipeline_id = $1
	ORDER BY started_at DESC`

	rows, err := r.db.QueryContext(ctx, query, pipelineID)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError,
			errors.Wrap(err, "failed to query training runs"))
	}
	defer rows.Close()

	var runs []*ports.TrainingRun
	for rows.Next() {
		var run ports.TrainingRun
		var resultsJSON []byte

		err := rows.Scan(&run.ID, &run.PipelineID, &resultsJSON, &run.BestModel, &run.StartedAt, &run.FinishedAt)
		if err != nil {
			return nil, errors.WithCode(errors.CodeDatabaseError,
				errors.Wrap(err, "failed to scan training run"))
		}
		if len(resultsJSON) > 0 {
			if err := json.Unmarshal(resultsJSON, &run.Results); err != nil {
				return nil, errors.Wrap(err, "failed to unmarshal training results")
			}
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError,
			errors.Wrap(err, "failed to iterate training runs"))
	}
	return runs, nil
}
