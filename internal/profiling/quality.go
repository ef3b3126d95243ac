package profiling

import (
	"autopipe/domain/dataset"
	"autopipe/domain/profile"
)

// QualityAssessor aggregates table-level quality metrics. It is pure
// aggregation; no per-column business logic lives here.
type QualityAssessor struct{}

// NewQualityAssessor creates a quality assessor.
func NewQualityAssessor() *QualityAssessor {
	return &QualityAssessor{}
}

// AssessQuality computes missingness, duplication and the overall quality
// score for a table. The score starts at 100, loses missing_percent when
// it exceeds 10, loses twice the duplicate percent when that exceeds 5,
// and is clamped to [0,100].
func (a *QualityAssessor) AssessQuality(t *dataset.Table) profile.DataQuality {
	rows := t.Rows()
	cols := t.Cols()

	q := profile.DataQuality{
		TotalRows:    rows,
		TotalColumns: cols,
	}

	for _, col := range t.Columns() {
		q.TotalMissing += col.MissingCount()
	}
	if rows > 0 && cols > 0 {
		q.MissingPercent = float64(q.TotalMissing) / float64(rows*cols) * 100
	}

	q.DuplicateRows = countDuplicateRows(t)
	q.DuplicatePercent = percent(q.DuplicateRows, rows)

	score := 100.0
	if q.MissingPercent > 10 {
		score -= q.MissingPercent
	}
	if q.DuplicatePercent > 5 {
		score -= q.DuplicatePercent * 2
	}
	q.QualityScore = clamp(score, 0, 100)

	return q
}

// countDuplicateRows counts rows identical to an earlier row. The first
// occurrence is not a duplicate.
func countDuplicateRows(t *dataset.Table) int {
	seen := make(map[string]struct{}, t.Rows())
	dupes := 0
	for i := 0; i < t.Rows(); i++ {
		key := t.RowKey(i)
		if _, ok := seen[key]; ok {
			dupes++
		} else {
			seen[key] = struct{}{}
		}
	}
	return dupes
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
