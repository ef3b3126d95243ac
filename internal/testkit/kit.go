// Package testkit provides in-memory fakes and synthetic tables for tests.
package testkit

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"autopipe/domain/core"
	"autopipe/domain/dataset"
	"autopipe/domain/pipeline"
	"autopipe/internal/errors"
	"autopipe/ports"
)

// InMemoryDatasetRepository is a map-backed DatasetRepository.
type InMemoryDatasetRepository struct {
	mu      sync.RWMutex
	records map[core.DatasetID]*dataset.Record
}

// NewInMemoryDatasetRepository creates an empty repository.
func NewInMemoryDatasetRepository() *InMemoryDatasetRepository {
	return &InMemoryDatasetRepository{records: make(map[core.DatasetID]*dataset.Record)}
}

func (r *InMemoryDatasetRepository) Create(ctx context.Context, rec *dataset.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

func (r *InMemoryDatasetRepository) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, errors.NotFound("dataset")
	}
	cp := *rec
	return &cp, nil
}

func (r *InMemoryDatasetRepository) List(ctx context.Context, limit, offset int) ([]*dataset.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*dataset.Record, 0, len(r.records))
	for _, rec := range r.records {
		cp := *rec
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *InMemoryDatasetRepository) UpdateStatus(ctx context.Context, id core.DatasetID, status dataset.Status, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return errors.NotFound("dataset")
	}
	rec.Status = status
	rec.ErrorMessage = errorMessage
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryDatasetRepository) Delete(ctx context.Context, id core.DatasetID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return errors.NotFound("dataset")
	}
	delete(r.records, id)
	return nil
}

// InMemoryPipelineRepository is a map-backed PipelineRepository.
type InMemoryPipelineRepository struct {
	mu      sync.RWMutex
	records map[core.PipelineID]*pipeline.Record
}

// NewInMemoryPipelineRepository creates an empty repository.
func NewInMemoryPipelineRepository() *InMemoryPipelineRepository {
	return &InMemoryPipelineRepository{records: make(map[core.PipelineID]*pipeline.Record)}
}

func (r *InMemoryPipelineRepository) Create(ctx context.Context, rec *pipeline.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

func (r *InMemoryPipelineRepository) GetByID(ctx context.Context, id core.PipelineID) (*pipeline.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, errors.NotFound("pipeline")
	}
	cp := *rec
	return &cp, nil
}

func (r *InMemoryPipelineRepository) GetLatestForDataset(ctx context.Context, datasetID core.DatasetID) (*pipeline.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *pipeline.Record
	for _, rec := range r.records {
		if rec.DatasetID != datasetID {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, errors.NotFound("pipeline")
	}
	cp := *latest
	return &cp, nil
}

// InMemoryMetricsRepository is a map-backed MetricsRepository.
type InMemoryMetricsRepository struct {
	mu   sync.RWMutex
	runs map[core.PipelineID][]*ports.TrainingRun
}

// NewInMemoryMetricsRepository creates an empty repository.
func NewInMemoryMetricsRepository() *InMemoryMetricsRepository {
	return &InMemoryMetricsRepository{runs: make(map[core.PipelineID][]*ports.TrainingRun)}
}

func (r *InMemoryMetricsRepository) Save(ctx context.Context, run *ports.TrainingRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *run
	r.runs[run.PipelineID] = append(r.runs[run.PipelineID], &cp)
	return nil
}

func (r *InMemoryMetricsRepository) GetByPipeline(ctx context.Context, pipelineID core.PipelineID) ([]*ports.TrainingRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runs := r.runs[pipelineID]
	out := make([]*ports.TrainingRun, len(runs))
	for i, run := range runs {
		cp := *run
		out[i] = &cp
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

// FakeTrainer reports canned metrics for every model in the pipeline.
type FakeTrainer struct {
	Err error // returned instead of a run when set
}

func (t *FakeTrainer) Train(ctx context.Context, table *dataset.Table, rec *pipeline.Record) (*ports.TrainingRun, error) {
	if t.Err != nil {
		return nil, t.Err
	}
	started := time.Now().UTC()
	run := &ports.TrainingRun{
		ID:         core.NewID(),
		PipelineID: rec.ID,
		Results:    make(map[string]*ports.Model),
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}
	for i, m := range rec.Config.Models {
		metrics := make(map[string]float64, len(rec.Config.EvaluationMetrics))
		for _, name := range rec.Config.EvaluationMetrics {
			metrics[name] = 0.9 - 0.05*float64(i)
		}
		run.Results[m.Name] = &ports.Model{Name: m.Name, Metrics: metrics}
		if run.BestModel == "" {
			run.BestModel = m.Name
		}
	}
	return run, nil
}

// SyntheticTable builds a deterministic mixed-type table with the given row
// count: a numeric feature, a skewed numeric feature, a low-cardinality
// categorical feature, and a binary target.
func SyntheticTable(rows int) *dataset.Table {
	rng := rand.New(rand.NewSource(42))

	age := make([]dataset.Value, rows)
	income := make([]dataset.Value, rows)
	city := make([]dataset.Value, rows)
	target := make([]dataset.Value, rows)
	cities := []string{"austin", "boston", "chicago"}

	for i := 0; i < rows; i++ {
		age[i] = dataset.NumericValue(20 + float64(rng.Intn(50)))
		income[i] = dataset.NumericValue(30000 * (1 + rng.ExpFloat64()))
		city[i] = dataset.CategoricalValue(cities[rng.Intn(len(cities))])
		if rng.Float64() < 0.5 {
			target[i] = dataset.CategoricalValue("yes")
		} else {
			target[i] = dataset.CategoricalValue("no")
		}
	}

	table, err := dataset.NewTable([]dataset.Column{
		{Name: "age", Kind: dataset.KindNumeric, Values: age},
		{Name: "income", Kind: dataset.KindNumeric, Values: income},
		{Name: "city", Kind: dataset.KindCategorical, Values: city},
		{Name: "target", Kind: dataset.KindCategorical, Values: target},
	})
	if err != nil {
		panic(fmt.Sprintf("testkit: synthetic table: %v", err))
	}
	return table
}
