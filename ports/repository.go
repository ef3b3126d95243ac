package ports

import (
	"context"

	"autopipe/domain/core"
	"autopipe/domain/dataset"
	"autopipe/domain/pipeline"
)

// DatasetRepository stores and retrieves dataset metadata records.
type DatasetRepository interface {
	Create(ctx context.Context, rec *dataset.Record) error
	GetByID(ctx context.Context, id core.DatasetID) (*dataset.Record, error)
	List(ctx context.Context, limit, offset int) ([]*dataset.Record, error)
	UpdateStatus(ctx context.Context, id core.DatasetID, status dataset.Status, errorMessage string) error
	Delete(ctx context.Context, id core.DatasetID) error
}

// PipelineRepository stores generated pipeline configurations as opaque
// structured documents.
type PipelineRepository interface {
	Create(ctx context.Context, rec *pipeline.Record) error
	GetByID(ctx context.Context, id core.PipelineID) (*pipeline.Record, error)
	GetLatestForDataset(ctx context.Context, datasetID core.DatasetID) (*pipeline.Record, error)
}

// MetricsRepository stores training metrics reported by the trainer.
type MetricsRepository interface {
	Save(ctx context.Context, run *TrainingRun) error
	GetByPipeline(ctx context.Context, pipelineID core.PipelineID) ([]*TrainingRun, error)
}
