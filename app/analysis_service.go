package app

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"autopipe/adapters/tabular"
	"autopipe/domain/core"
	"autopipe/domain/dataset"
	"autopipe/domain/pipeline"
	"autopipe/domain/profile"
	"autopipe/internal"
	"autopipe/internal/errors"
	"autopipe/internal/fallback"
	"autopipe/internal/preprocess"
	"autopipe/internal/profiling"
	"autopipe/internal/rules"
	"autopipe/ports"
)

// AnalysisService orchestrates the full flow: ingest a dataset, profile it
// against a chosen target, run the rule engine behind its fallback ladder,
// and persist the resulting pipeline with its explanation. Concurrent
// analyses are bounded by a weighted semaphore.
type AnalysisService struct {
	datasets  ports.DatasetRepository
	pipelines ports.PipelineRepository
	metrics   ports.MetricsRepository
	files     ports.FileStore
	narrative ports.NarrativePort
	trainer   ports.TrainerPort // nil when no trainer is attached

	reader   *tabular.DataReader
	profiler *profiling.Profiler
	ladder   *fallback.Ladder

	sem    *semaphore.Weighted
	logger *internal.Logger
}

// AnalysisServiceDeps wires the service's ports and bounds.
type AnalysisServiceDeps struct {
	Datasets  ports.DatasetRepository
	Pipelines ports.PipelineRepository
	Metrics   ports.MetricsRepository
	Files     ports.FileStore
	Narrative ports.NarrativePort
	Trainer   ports.TrainerPort

	// MaxConcurrent bounds simultaneous analyses; values below 1 become 1.
	MaxConcurrent int64
}

// NewAnalysisService creates the service.
func NewAnalysisService(deps AnalysisServiceDeps) *AnalysisService {
	if deps.MaxConcurrent < 1 {
		deps.MaxConcurrent = 1
	}
	return &AnalysisService{
		datasets:  deps.Datasets,
		pipelines: deps.Pipelines,
		metrics:   deps.Metrics,
		files:     deps.Files,
		narrative: deps.Narrative,
		trainer:   deps.Trainer,
		reader:    tabular.NewDataReader(),
		profiler:  profiling.NewProfiler(),
		ladder:    fallback.NewLadder(rules.NewEngine()),
		sem:       semaphore.NewWeighted(deps.MaxConcurrent),
		logger:    internal.DefaultLogger.WithComponent("service"),
	}
}

// AnalysisResult bundles everything one analysis produces.
type AnalysisResult struct {
	Dataset     *dataset.Record          `json:"dataset"`
	Pipeline    *pipeline.Record         `json:"pipeline"`
	Profile     *profile.DatasetProfile  `json:"profile"`
	Explanation string                   `json:"explanation"`
	Tier        int                      `json:"tier"`
	Failures    []fallback.AttemptRecord `json:"failures,omitempty"`
}

// UploadDataset validates and stores an uploaded file, returning its record.
// The raw bytes are parsed once here so malformed files fail at upload time,
// then stored encrypted for later analyses.
func (s *AnalysisService) UploadDataset(ctx context.Context, userID core.UserID, filename string, data []byte) (*dataset.Record, error) {
	table, err := s.reader.ReadTable(data, filename)
	if err != nil {
		return nil, err
	}

	id := core.DatasetID(core.NewID())
	path, err := s.files.Put(ctx, id.String(), data)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &dataset.Record{
		ID:               id,
		UserID:           userID,
		OriginalFilename: filename,
		FilePath:         path,
		FileSize:         int64(len(data)),
		RowCount:         table.Rows(),
		ColumnCount:      table.Cols(),
		MissingRate:      missingRate(table),
		Status:           dataset.StatusReady,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.datasets.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("dataset uploaded: id=%s file=%s rows=%d cols=%d",
		id, filename, rec.RowCount, rec.ColumnCount)
	return rec, nil
}

// AnalyzeDataset profiles a stored dataset against targetColumn and
// generates its pipeline. The stored record is updated with the chosen
// target; the pipeline and profile are persisted together.
func (s *AnalysisService) AnalyzeDataset(ctx context.Context, id core.DatasetID, targetColumn string) (*AnalysisResult, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "analysis cancelled while waiting for a slot")
	}
	defer s.sem.Release(1)

	rec, err := s.datasets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	table, err := s.loadTable(ctx, rec)
	if err != nil {
		s.markFailed(ctx, id, err)
		return nil, err
	}

	p, err := s.profiler.ProfileDataset(table, targetColumn)
	if err != nil {
		s.markFailed(ctx, id, err)
		return nil, err
	}
	task := p.Target.SuggestedTask

	outcome, err := s.ladder.GeneratePipeline(p, task)
	if err != nil {
		// Only an internal invariant violation reaches here.
		s.markFailed(ctx, id, err)
		return nil, err
	}
	for _, f := range outcome.Failures {
		s.logger.Warn("pipeline attempt %d (tier %d) failed for dataset %s: %s",
			f.Attempt, f.Tier, id, f.Reason)
	}

	pipeRec := &pipeline.Record{
		ID:        core.PipelineID(core.NewID()),
		DatasetID: id,
		TaskType:  task,
		Tier:      int(outcome.Tier),
		Config:    outcome.Config,
		Profile:   p,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.pipelines.Create(ctx, pipeRec); err != nil {
		return nil, err
	}

	rec.TargetColumn = targetColumn
	rec.Status = dataset.StatusReady
	if err := s.datasets.UpdateStatus(ctx, id, dataset.StatusReady, ""); err != nil {
		s.logger.Warn("failed to update dataset %s after analysis: %v", id, err)
	}

	narrative, err := s.narrative.ExplainPipeline(ctx, outcome.Config, p)
	if err != nil {
		return nil, err
	}

	s.logger.Info("pipeline generated: dataset=%s pipeline=%s task=%s tier=%d",
		id, pipeRec.ID, task, outcome.Tier)
	return &AnalysisResult{
		Dataset:     rec,
		Pipeline:    pipeRec,
		Profile:     p,
		Explanation: narrative.Text,
		Tier:        int(outcome.Tier),
		Failures:    outcome.Failures,
	}, nil
}

// TrainPipeline runs the attached trainer against a stored pipeline and
// saves the reported metrics. It fails when no trainer is configured.
func (s *AnalysisService) TrainPipeline(ctx context.Context, pipelineID core.PipelineID) (*ports.TrainingRun, error) {
	if s.trainer == nil {
		return nil, errors.InvalidInput("no trainer is configured")
	}
	pipeRec, err := s.pipelines.GetByID(ctx, pipelineID)
	if err != nil {
		return nil, err
	}
	dsRec, err := s.datasets.GetByID(ctx, pipeRec.DatasetID)
	if err != nil {
		return nil, err
	}
	table, err := s.loadTable(ctx, dsRec)
	if err != nil {
		return nil, err
	}

	run, err := s.trainer.Train(ctx, table, pipeRec)
	if err != nil {
		return nil, errors.Wrap(err, "training failed")
	}
	if err := s.metrics.Save(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// RecordTrainingRun stores metrics reported by an external trainer.
func (s *AnalysisService) RecordTrainingRun(ctx context.Context, run *ports.TrainingRun) error {
	if run.PipelineID == "" {
		return errors.InvalidInput("pipeline_id is required")
	}
	if _, err := s.pipelines.GetByID(ctx, run.PipelineID); err != nil {
		return err
	}
	if run.ID == "" {
		run.ID = core.NewID()
	}
	return s.metrics.Save(ctx, run)
}

// GetDataset returns a stored dataset record.
func (s *AnalysisService) GetDataset(ctx context.Context, id core.DatasetID) (*dataset.Record, error) {
	return s.datasets.GetByID(ctx, id)
}

// ListDatasets returns stored dataset records, newest first.
func (s *AnalysisService) ListDatasets(ctx context.Context, limit, offset int) ([]*dataset.Record, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.datasets.List(ctx, limit, offset)
}

// DeleteDataset removes a dataset record and its stored file.
func (s *AnalysisService) DeleteDataset(ctx context.Context, id core.DatasetID) error {
	if err := s.datasets.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.files.Delete(ctx, id.String()); err != nil {
		s.logger.Warn("failed to delete stored file for dataset %s: %v", id, err)
	}
	return nil
}

// GetPipeline returns a stored pipeline record.
func (s *AnalysisService) GetPipeline(ctx context.Context, id core.PipelineID) (*pipeline.Record, error) {
	return s.pipelines.GetByID(ctx, id)
}

// GetLatestPipeline returns the most recent pipeline for a dataset.
func (s *AnalysisService) GetLatestPipeline(ctx context.Context, datasetID core.DatasetID) (*pipeline.Record, error) {
	return s.pipelines.GetLatestForDataset(ctx, datasetID)
}

// ExplainPipeline re-renders the explanation for a stored pipeline.
func (s *AnalysisService) ExplainPipeline(ctx context.Context, id core.PipelineID) (*ports.Narrative, error) {
	rec, err := s.pipelines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.narrative.ExplainPipeline(ctx, rec.Config, rec.Profile)
}

// PreviewPreprocessing runs baseline cleaning on a stored dataset and
// returns the step log without mutating the stored file.
func (s *AnalysisService) PreviewPreprocessing(ctx context.Context, id core.DatasetID) (*preprocess.Result, error) {
	rec, err := s.datasets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	table, err := s.loadTable(ctx, rec)
	if err != nil {
		return nil, err
	}
	return preprocess.Apply(table)
}

// GetTrainingRuns returns stored metrics for a pipeline, newest first.
func (s *AnalysisService) GetTrainingRuns(ctx context.Context, pipelineID core.PipelineID) ([]*ports.TrainingRun, error) {
	return s.metrics.GetByPipeline(ctx, pipelineID)
}

func (s *AnalysisService) loadTable(ctx context.Context, rec *dataset.Record) (*dataset.Table, error) {
	data, err := s.files.Get(ctx, rec.ID.String())
	if err != nil {
		return nil, err
	}
	return s.reader.ReadTable(data, rec.OriginalFilename)
}

func (s *AnalysisService) markFailed(ctx context.Context, id core.DatasetID, cause error) {
	if err := s.datasets.UpdateStatus(ctx, id, dataset.StatusFailed, cause.Error()); err != nil {
		s.logger.Warn("failed to mark dataset %s as failed: %v", id, err)
	}
}

func missingRate(t *dataset.Table) float64 {
	total := t.Rows() * t.Cols()
	if total == 0 {
		return 0
	}
	missing := 0
	for _, col := range t.Columns() {
		missing += col.MissingCount()
	}
	return float64(missing) / float64(total)
}
