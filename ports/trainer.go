package ports

import (
	"context"
	"time"

	"autopipe/domain/core"
	"autopipe/domain/dataset"
	"autopipe/domain/pipeline"
)

// TrainerPort executes a pipeline configuration against a dataset. Model
// fitting happens outside this service; the configuration this module emits
// is complete enough that the trainer never needs to fill in missing keys.
type TrainerPort interface {
	Train(ctx context.Context, table *dataset.Table, rec *pipeline.Record) (*TrainingRun, error)
}

// TrainingRun is the trainer's report for one pipeline execution.
type TrainingRun struct {
	ID         core.ID           `json:"id"`
	PipelineID core.PipelineID   `json:"pipeline_id"`
	Results    map[string]*Model `json:"results"` // keyed by model name
	BestModel  string            `json:"best_model,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

// Model holds the evaluation metrics for a single trained estimator, or
// the error that prevented training it.
type Model struct {
	Name    string             `json:"name"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
	Error   string             `json:"error,omitempty"`
}
