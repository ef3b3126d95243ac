package profiling

import (
	"autopipe/domain/dataset"
	"autopipe/domain/profile"
	"autopipe/internal/errors"
)

// Profiler orchestrates column, target and quality profiling into a full
// DatasetProfile. Each call is a pure function of its inputs; no state is
// carried between analyses.
type Profiler struct {
	columns *ColumnProfiler
	target  *TargetProfiler
	quality *QualityAssessor
}

// NewProfiler creates a dataset profiler.
func NewProfiler() *Profiler {
	return &Profiler{
		columns: NewColumnProfiler(),
		target:  NewTargetProfiler(),
		quality: NewQualityAssessor(),
	}
}

// ProfileDataset profiles every column of the table against the named
// target. The table is treated as read-only. Degenerate inputs (empty
// tables, all-missing columns) produce degenerate statistics, not errors;
// the only failure mode is a target column that does not exist.
func (p *Profiler) ProfileDataset(t *dataset.Table, targetColumn string) (*profile.DatasetProfile, error) {
	if t == nil {
		return nil, errors.InvalidInput("dataset table is nil")
	}
	targetCol, ok := t.Column(targetColumn)
	if !ok {
		return nil, errors.InvalidInput("target column " + targetColumn + " not found in dataset")
	}

	result := &profile.DatasetProfile{
		Shape:    profile.Shape{Rows: t.Rows(), Columns: t.Cols()},
		Target:   p.target.AnalyzeTarget(targetCol),
		Features: make(map[string]profile.FeatureProfile, t.Cols()-1),
	}

	for _, col := range t.Columns() {
		if col.Name == targetColumn {
			continue
		}
		result.Features[col.Name] = p.columns.ProfileFeature(col, targetCol)
	}

	result.Quality = p.quality.AssessQuality(t)
	result.Recommendations = buildRecommendations(result)

	return result, nil
}
