package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"autopipe/domain/dataset"
	"autopipe/domain/profile"
)

// Task classification thresholds. Fixed contract values.
const (
	// UniqueRatioThreshold: a numeric target with unique_count/row_count
	// below this is treated as classification.
	UniqueRatioThreshold = 0.05

	// ImbalanceThreshold: a classification target whose majority/minority
	// class ratio exceeds this is imbalanced.
	ImbalanceThreshold = 3.0
)

// TargetProfiler classifies the prediction target and computes its
// distribution statistics.
type TargetProfiler struct{}

// NewTargetProfiler creates a target profiler.
func NewTargetProfiler() *TargetProfiler {
	return &TargetProfiler{}
}

// AnalyzeTarget profiles the target column in depth.
func (p *TargetProfiler) AnalyzeTarget(col dataset.Column) profile.TargetAnalysis {
	rows := col.Len()
	missing := col.MissingCount()

	ta := profile.TargetAnalysis{
		Name:           col.Name,
		DType:          string(col.Kind),
		MissingCount:   missing,
		MissingPercent: percent(missing, rows),
		UniqueCount:    col.UniqueCount(),
	}

	if col.Kind == dataset.KindNumeric {
		uniqueRatio := 0.0
		if rows > 0 {
			uniqueRatio = float64(ta.UniqueCount) / float64(rows)
		}
		if uniqueRatio < UniqueRatioThreshold {
			ta.SuggestedTask = profile.TaskClassification
			ta.IsNumericCategorical = true
		} else {
			ta.SuggestedTask = profile.TaskRegression
		}

		values := col.Floats()
		if len(values) > 0 {
			ta.Mean = safeStat(stats.Mean(values))
			ta.Std = safeStat(stats.StandardDeviationSample(values))
			ta.Min = safeStat(stats.Min(values))
			ta.Max = safeStat(stats.Max(values))
			ta.Skewness = profile.F(stat.Skew(values, nil))
		}
	} else {
		ta.SuggestedTask = profile.TaskClassification
	}

	if ta.SuggestedTask == profile.TaskClassification {
		p.classDistribution(col, &ta)
	}

	return ta
}

// classDistribution computes class counts and the imbalance ratio
// (majority over minority count). The ratio is +Inf when the minority
// count is zero, which cannot occur for observed classes but is defined
// for completeness.
func (p *TargetProfiler) classDistribution(col dataset.Column, ta *profile.TargetAnalysis) {
	counts := make(map[string]int)
	for _, v := range col.Values {
		if !v.Missing {
			counts[v.Identity(col.Kind)]++
		}
	}
	if len(counts) == 0 {
		return
	}
	ta.ClassCounts = counts

	maxCount, minCount := 0, math.MaxInt
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
		if c < minCount {
			minCount = c
		}
	}
	if minCount == 0 {
		ta.ImbalanceRatio = profile.Float(math.Inf(1))
	} else {
		ta.ImbalanceRatio = profile.Float(float64(maxCount) / float64(minCount))
	}
	ta.IsImbalanced = float64(ta.ImbalanceRatio) > ImbalanceThreshold
}
