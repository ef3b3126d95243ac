package profiling

import (
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"autopipe/domain/dataset"
	"autopipe/domain/profile"
)

// Classification thresholds. Fixed contract values, not configuration.
const (
	// CategoricalNumericMaxUnique reclassifies a numeric column as
	// categorical_numeric when it has fewer distinct values than this
	// over at least CategoricalNumericMinRows rows.
	CategoricalNumericMaxUnique = 10
	CategoricalNumericMinRows   = 50

	// HighCardinalityThreshold flags categorical columns with more
	// distinct values than this.
	HighCardinalityThreshold = 50
)

// ColumnProfiler computes per-column statistics and classifies each
// column's semantic type. It never mutates its inputs.
type ColumnProfiler struct{}

// NewColumnProfiler creates a column profiler.
func NewColumnProfiler() *ColumnProfiler {
	return &ColumnProfiler{}
}

// ProfileFeature analyzes a single feature column against the target.
// Malformed or degenerate data degrades individual statistics to null
// rather than failing the profile.
func (p *ColumnProfiler) ProfileFeature(col dataset.Column, target dataset.Column) profile.FeatureProfile {
	rows := col.Len()
	missing := col.MissingCount()
	unique := col.UniqueCount()

	fp := profile.FeatureProfile{
		Name:           col.Name,
		DType:          string(col.Kind),
		MissingCount:   missing,
		MissingPercent: percent(missing, rows),
		UniqueCount:    unique,
	}
	if rows > 0 {
		fp.CardinalityRatio = float64(unique) / float64(rows)
	}

	if col.Kind == dataset.KindNumeric {
		fp.FeatureType = profile.FeatureNumeric
		if unique < CategoricalNumericMaxUnique && rows > CategoricalNumericMinRows {
			fp.FeatureType = profile.FeatureCategoricalNumeric
		}

		if fp.FeatureType == profile.FeatureNumeric {
			values := col.Floats()
			p.numericStats(values, &fp)
			p.outlierStats(values, rows, &fp)

			if target.Kind == dataset.KindNumeric {
				corr := pairwiseCorrelation(col, target)
				fp.TargetCorrelation = profile.F(corr)
				fp.CorrelationStrength = interpretCorrelation(abs(corr))
			}
		}
	} else {
		fp.FeatureType = profile.FeatureCategorical
		p.categoricalStats(col, rows, &fp)
		fp.IsHighCardinality = unique > HighCardinalityThreshold
	}

	fp.IsCritical = fp.MissingPercent < 30
	fp.NeedsAttention = fp.MissingPercent > 50

	return fp
}

// numericStats fills the descriptive statistics for a numeric column.
// An all-missing column leaves every statistic nil.
func (p *ColumnProfiler) numericStats(values []float64, fp *profile.FeatureProfile) {
	if len(values) == 0 {
		return
	}
	fp.Mean = safeStat(stats.Mean(values))
	fp.Std = safeStat(stats.StandardDeviationSample(values))
	fp.Min = safeStat(stats.Min(values))
	fp.Max = safeStat(stats.Max(values))
	fp.Median = safeStat(stats.Median(values))
	fp.Skewness = profile.F(stat.Skew(values, nil))
	fp.Kurtosis = profile.F(stat.ExKurtosis(values, nil))
}

// outlierStats applies the IQR rule: a value is an outlier when it falls
// below Q1-1.5*IQR or above Q3+1.5*IQR. The percentage is taken over all
// rows, missing included, matching how missingness is reported.
func (p *ColumnProfiler) outlierStats(values []float64, rows int, fp *profile.FeatureProfile) {
	if len(values) < 4 {
		return
	}
	q1, err1 := stats.Percentile(values, 25)
	q3, err3 := stats.Percentile(values, 75)
	if err1 != nil || err3 != nil {
		return
	}
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	count := 0
	for _, v := range values {
		if v < lower || v > upper {
			count++
		}
	}
	fp.OutlierCount = count
	fp.OutlierPercent = percent(count, rows)
}

// categoricalStats fills frequency-based statistics for a categorical column.
func (p *ColumnProfiler) categoricalStats(col dataset.Column, rows int, fp *profile.FeatureProfile) {
	counts := make(map[string]int)
	for _, v := range col.Values {
		if !v.Missing {
			counts[v.Raw]++
		}
	}
	if len(counts) == 0 {
		return
	}

	type valueCount struct {
		value string
		count int
	}
	ranked := make([]valueCount, 0, len(counts))
	for v, c := range counts {
		ranked = append(ranked, valueCount{v, c})
	}
	// Ties break on value so the profile is deterministic.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].value < ranked[j].value
	})

	top := ranked
	if len(top) > 10 {
		top = top[:10]
	}
	fp.TopCategories = make(map[string]int, len(top))
	for _, vc := range top {
		fp.TopCategories[vc.value] = vc.count
	}

	fp.Mode = ranked[0].value
	fp.ModeFrequency = ranked[0].count
	fp.ModePercent = percent(ranked[0].count, rows)
}

// pairwiseCorrelation computes Pearson correlation over rows where both
// the feature and the target are present. Returns 0 when undefined.
func pairwiseCorrelation(feature, target dataset.Column) float64 {
	n := feature.Len()
	if target.Len() < n {
		n = target.Len()
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		fv, tv := feature.Values[i], target.Values[i]
		if fv.Missing || tv.Missing {
			continue
		}
		xs = append(xs, fv.Num)
		ys = append(ys, tv.Num)
	}
	if len(xs) < 2 {
		return 0
	}
	r, err := stats.Pearson(xs, ys)
	if err != nil || r != r {
		return 0
	}
	return r
}

// interpretCorrelation maps |r| to a qualitative strength label.
func interpretCorrelation(absCorr float64) string {
	switch {
	case absCorr > 0.7:
		return "strong"
	case absCorr > 0.4:
		return "moderate"
	case absCorr > 0.2:
		return "weak"
	default:
		return "very_weak"
	}
}

// safeStat converts a (value, error) statistic into a nullable float:
// a failed or undefined statistic becomes nil instead of aborting the
// profile.
func safeStat(v float64, err error) *profile.Float {
	if err != nil {
		return nil
	}
	return profile.F(v)
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
