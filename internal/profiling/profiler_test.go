package profiling

import (
	"fmt"
	"math"
	"testing"

	"autopipe/domain/dataset"
	"autopipe/domain/profile"
)

func numericColumn(name string, values ...float64) dataset.Column {
	vals := make([]dataset.Value, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			vals[i] = dataset.MissingValue()
		} else {
			vals[i] = dataset.NumericValue(v)
		}
	}
	return dataset.Column{Name: name, Kind: dataset.KindNumeric, Values: vals}
}

func categoricalColumn(name string, values ...string) dataset.Column {
	vals := make([]dataset.Value, len(values))
	for i, v := range values {
		if v == "" {
			vals[i] = dataset.MissingValue()
		} else {
			vals[i] = dataset.CategoricalValue(v)
		}
	}
	return dataset.Column{Name: name, Kind: dataset.KindCategorical, Values: vals}
}

func mustTable(t *testing.T, cols ...dataset.Column) *dataset.Table {
	t.Helper()
	table, err := dataset.NewTable(cols)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestFeatureTypeClassification(t *testing.T) {
	p := NewColumnProfiler()
	target := numericColumn("y", 1, 2, 3)

	t.Run("low unique over many rows is categorical_numeric", func(t *testing.T) {
		values := make([]float64, 60)
		for i := range values {
			values[i] = float64(i % 5)
		}
		fp := p.ProfileFeature(numericColumn("x", values...), target)
		if fp.FeatureType != profile.FeatureCategoricalNumeric {
			t.Errorf("feature type = %s, want categorical_numeric", fp.FeatureType)
		}
		// Reclassified columns do not get numeric moments.
		if fp.Mean != nil {
			t.Error("categorical_numeric column has a mean")
		}
	})

	t.Run("low unique on exactly the row floor stays numeric", func(t *testing.T) {
		values := make([]float64, 50)
		for i := range values {
			values[i] = float64(i % 5)
		}
		fp := p.ProfileFeature(numericColumn("x", values...), target)
		if fp.FeatureType != profile.FeatureNumeric {
			t.Errorf("feature type = %s, want numeric at 50 rows", fp.FeatureType)
		}
	})

	t.Run("exactly 10 unique over many rows stays numeric", func(t *testing.T) {
		values := make([]float64, 60)
		for i := range values {
			values[i] = float64(i % 10)
		}
		fp := p.ProfileFeature(numericColumn("x", values...), target)
		if fp.FeatureType != profile.FeatureNumeric {
			t.Errorf("feature type = %s, want numeric at 10 unique", fp.FeatureType)
		}
	})

	t.Run("string column is categorical", func(t *testing.T) {
		fp := p.ProfileFeature(categoricalColumn("x", "a", "b", "c"), target)
		if fp.FeatureType != profile.FeatureCategorical {
			t.Errorf("feature type = %s, want categorical", fp.FeatureType)
		}
	})
}

func TestNumericStats(t *testing.T) {
	p := NewColumnProfiler()
	target := numericColumn("y", 1, 2, 3, 4, 5)

	fp := p.ProfileFeature(numericColumn("x", 2, 4, 4, 4, 6), target)
	if fp.Mean == nil || fp.Mean.Value() != 4 {
		t.Errorf("mean = %v, want 4", fp.Mean)
	}
	if fp.Median == nil || fp.Median.Value() != 4 {
		t.Errorf("median = %v, want 4", fp.Median)
	}
	if fp.Min.Value() != 2 || fp.Max.Value() != 6 {
		t.Errorf("min/max = %v/%v", fp.Min, fp.Max)
	}
	if fp.Std == nil {
		t.Fatal("std is nil")
	}
	// Sample standard deviation of {2,4,4,4,6} is sqrt(2).
	if got := fp.Std.Value(); math.Abs(got-math.Sqrt2) > 1e-9 {
		t.Errorf("std = %v, want sqrt(2)", got)
	}
}

func TestAllMissingColumn(t *testing.T) {
	p := NewColumnProfiler()
	target := numericColumn("y", 1, 2, 3)
	nan := math.NaN()

	fp := p.ProfileFeature(numericColumn("x", nan, nan, nan), target)
	if fp.MissingPercent != 100 {
		t.Errorf("missing percent = %v, want 100", fp.MissingPercent)
	}
	if fp.Mean != nil || fp.Std != nil || fp.Skewness != nil {
		t.Error("all-missing column produced numeric statistics")
	}
	if fp.UniqueCount != 0 {
		t.Errorf("unique count = %d, want 0", fp.UniqueCount)
	}
}

func TestOutliersIQR(t *testing.T) {
	p := NewColumnProfiler()
	target := numericColumn("y", 1, 2, 3)

	t.Run("clear outlier flagged", func(t *testing.T) {
		// 1..10 plus 100: only 100 falls outside the 1.5*IQR fences.
		values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 100}
		fp := p.ProfileFeature(numericColumn("x", values...), target)
		if fp.OutlierCount != 1 {
			t.Errorf("outlier count = %d, want 1", fp.OutlierCount)
		}
	})

	t.Run("fewer than four values computes nothing", func(t *testing.T) {
		fp := p.ProfileFeature(numericColumn("x", 1, 2, 1000), target)
		if fp.OutlierCount != 0 {
			t.Errorf("outlier count = %d, want 0", fp.OutlierCount)
		}
	})

	t.Run("constant column has no outliers", func(t *testing.T) {
		fp := p.ProfileFeature(numericColumn("x", 5, 5, 5, 5, 5), target)
		if fp.OutlierCount != 0 {
			t.Errorf("outlier count = %d, want 0", fp.OutlierCount)
		}
	})
}

func TestCorrelationStrength(t *testing.T) {
	tests := []struct {
		abs  float64
		want string
	}{
		{0.9, "strong"},
		{0.7, "moderate"},
		{0.5, "moderate"},
		{0.4, "weak"},
		{0.3, "weak"},
		{0.2, "very_weak"},
		{0.05, "very_weak"},
	}
	for _, tt := range tests {
		if got := interpretCorrelation(tt.abs); got != tt.want {
			t.Errorf("interpretCorrelation(%v) = %s, want %s", tt.abs, got, tt.want)
		}
	}
}

func TestPairwiseCorrelation(t *testing.T) {
	t.Run("perfect positive", func(t *testing.T) {
		x := numericColumn("x", 1, 2, 3, 4, 5)
		y := numericColumn("y", 2, 4, 6, 8, 10)
		if r := pairwiseCorrelation(x, y); math.Abs(r-1) > 1e-9 {
			t.Errorf("r = %v, want 1", r)
		}
	})

	t.Run("missing rows excluded pairwise", func(t *testing.T) {
		nan := math.NaN()
		x := numericColumn("x", 1, nan, 3, 4, 5)
		y := numericColumn("y", 2, 4, nan, 8, 10)
		if r := pairwiseCorrelation(x, y); math.Abs(r-1) > 1e-9 {
			t.Errorf("r = %v, want 1 over the three complete rows", r)
		}
	})

	t.Run("constant column degrades to zero", func(t *testing.T) {
		x := numericColumn("x", 5, 5, 5, 5)
		y := numericColumn("y", 1, 2, 3, 4)
		if r := pairwiseCorrelation(x, y); r != 0 {
			t.Errorf("r = %v, want 0", r)
		}
	})
}

func TestTargetTaskClassification(t *testing.T) {
	p := NewTargetProfiler()

	t.Run("string target is classification", func(t *testing.T) {
		ta := p.AnalyzeTarget(categoricalColumn("y", "yes", "no", "yes"))
		if ta.SuggestedTask != profile.TaskClassification {
			t.Errorf("task = %s, want classification", ta.SuggestedTask)
		}
	})

	t.Run("numeric with low unique ratio is classification", func(t *testing.T) {
		// 3 unique over 100 rows: ratio 0.03, below the 0.05 cut.
		values := make([]float64, 100)
		for i := range values {
			values[i] = float64(i % 3)
		}
		ta := p.AnalyzeTarget(numericColumn("y", values...))
		if ta.SuggestedTask != profile.TaskClassification {
			t.Errorf("task = %s, want classification", ta.SuggestedTask)
		}
		if !ta.IsNumericCategorical {
			t.Error("IsNumericCategorical not set")
		}
		if ta.ClassCounts == nil {
			t.Error("class counts not computed")
		}
		// Numeric storage keeps its numeric summary even when reclassified.
		if ta.Mean == nil {
			t.Error("numeric summary missing")
		}
	})

	t.Run("numeric with high unique ratio is regression", func(t *testing.T) {
		values := make([]float64, 100)
		for i := range values {
			values[i] = float64(i) * 1.5
		}
		ta := p.AnalyzeTarget(numericColumn("y", values...))
		if ta.SuggestedTask != profile.TaskRegression {
			t.Errorf("task = %s, want regression", ta.SuggestedTask)
		}
		if ta.ClassCounts != nil {
			t.Error("regression target has class counts")
		}
	})

	t.Run("ratio exactly at threshold is regression", func(t *testing.T) {
		// 5 unique over 100 rows: ratio 0.05 is not below the cut.
		values := make([]float64, 100)
		for i := range values {
			values[i] = float64(i % 5)
		}
		ta := p.AnalyzeTarget(numericColumn("y", values...))
		if ta.SuggestedTask != profile.TaskRegression {
			t.Errorf("task = %s, want regression at ratio 0.05", ta.SuggestedTask)
		}
	})
}

func TestCategoricalNumericSkipsOutliersAndCorrelation(t *testing.T) {
	p := NewColumnProfiler()

	// 2 unique values over 60 rows: categorical_numeric. The 100s would
	// all be IQR outliers if the column were treated as truly numeric.
	values := make([]float64, 60)
	for i := range values {
		values[i] = 1
	}
	values[10], values[20], values[30] = 100, 100, 100
	col := numericColumn("code", values...)
	target := numericColumn("y", values...)

	fp := p.ProfileFeature(col, target)
	if fp.FeatureType != profile.FeatureCategoricalNumeric {
		t.Fatalf("feature type = %s, want categorical_numeric", fp.FeatureType)
	}
	if fp.OutlierCount != 0 || fp.OutlierPercent != 0 {
		t.Errorf("outliers = %d (%v%%), want none computed", fp.OutlierCount, fp.OutlierPercent)
	}
	if fp.TargetCorrelation != nil || fp.CorrelationStrength != "" {
		t.Errorf("correlation computed for categorical_numeric column")
	}
}

func TestClassCountsMergeNumericFormats(t *testing.T) {
	p := NewTargetProfiler()

	// 96 rows of class 0 split across "0" and "0.0" renderings, 4 of
	// class 1. Class identity must follow the parsed value.
	values := make([]dataset.Value, 100)
	for i := range values {
		switch {
		case i < 48:
			values[i] = dataset.Value{Num: 0, Raw: "0"}
		case i < 96:
			values[i] = dataset.Value{Num: 0, Raw: "0.0"}
		default:
			values[i] = dataset.Value{Num: 1, Raw: "1"}
		}
	}
	ta := p.AnalyzeTarget(dataset.Column{Name: "y", Kind: dataset.KindNumeric, Values: values})

	if ta.SuggestedTask != profile.TaskClassification {
		t.Fatalf("task = %s, want classification", ta.SuggestedTask)
	}
	if len(ta.ClassCounts) != 2 {
		t.Fatalf("class counts = %v, want 2 classes", ta.ClassCounts)
	}
	if ta.ClassCounts["0"] != 96 {
		t.Errorf("class 0 count = %d, want 96", ta.ClassCounts["0"])
	}
	if float64(ta.ImbalanceRatio) != 24.0 {
		t.Errorf("ratio = %v, want 24.0", float64(ta.ImbalanceRatio))
	}
}

func TestImbalanceDetection(t *testing.T) {
	p := NewTargetProfiler()

	t.Run("90/10 split is imbalanced", func(t *testing.T) {
		values := make([]string, 100)
		for i := range values {
			if i < 90 {
				values[i] = "a"
			} else {
				values[i] = "b"
			}
		}
		ta := p.AnalyzeTarget(categoricalColumn("y", values...))
		if float64(ta.ImbalanceRatio) != 9.0 {
			t.Errorf("ratio = %v, want 9.0", float64(ta.ImbalanceRatio))
		}
		if !ta.IsImbalanced {
			t.Error("90/10 not flagged as imbalanced")
		}
	})

	t.Run("70/30 split is balanced", func(t *testing.T) {
		values := make([]string, 100)
		for i := range values {
			if i < 70 {
				values[i] = "a"
			} else {
				values[i] = "b"
			}
		}
		ta := p.AnalyzeTarget(categoricalColumn("y", values...))
		if ta.IsImbalanced {
			t.Errorf("70/30 flagged as imbalanced (ratio %v)", float64(ta.ImbalanceRatio))
		}
	})

	t.Run("ratio exactly 3.0 is balanced", func(t *testing.T) {
		values := make([]string, 80)
		for i := range values {
			if i < 60 {
				values[i] = "a"
			} else {
				values[i] = "b"
			}
		}
		ta := p.AnalyzeTarget(categoricalColumn("y", values...))
		if ta.IsImbalanced {
			t.Error("ratio exactly 3.0 flagged as imbalanced")
		}
	})
}

func TestQualityScore(t *testing.T) {
	a := NewQualityAssessor()

	t.Run("clean table scores 100", func(t *testing.T) {
		table := mustTable(t,
			numericColumn("x", 1, 2, 3, 4),
			categoricalColumn("y", "a", "b", "c", "d"),
		)
		q := a.AssessQuality(table)
		if q.QualityScore != 100 {
			t.Errorf("score = %v, want 100", q.QualityScore)
		}
	})

	t.Run("missingness below ten percent is free", func(t *testing.T) {
		nan := math.NaN()
		// 1 missing of 20 cells: 5%.
		table := mustTable(t,
			numericColumn("x", nan, 2, 3, 4, 5, 6, 7, 8, 9, 10),
			numericColumn("z", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10),
		)
		q := a.AssessQuality(table)
		if q.QualityScore != 100 {
			t.Errorf("score = %v, want 100 at 5%% missing", q.QualityScore)
		}
	})

	t.Run("heavy missingness deducts its percent", func(t *testing.T) {
		nan := math.NaN()
		table := mustTable(t,
			numericColumn("x", nan, nan, 3, 4),
			numericColumn("z", 1, 2, 3, 4),
		)
		// 2 of 8 cells missing: 25% > 10, deducted in full.
		q := a.AssessQuality(table)
		if q.QualityScore != 75 {
			t.Errorf("score = %v, want 75", q.QualityScore)
		}
	})

	t.Run("duplicates deduct twice their percent", func(t *testing.T) {
		table := mustTable(t,
			numericColumn("x", 1, 1, 1, 1, 1, 2, 3, 4, 5, 6),
			categoricalColumn("y", "a", "a", "a", "a", "a", "b", "c", "d", "e", "f"),
		)
		// Rows 2-5 duplicate row 1: 4 of 10 rows, 40% > 5, deducted doubled.
		q := a.AssessQuality(table)
		if q.DuplicateRows != 4 {
			t.Fatalf("duplicate rows = %d, want 4", q.DuplicateRows)
		}
		if q.QualityScore != 20 {
			t.Errorf("score = %v, want 20", q.QualityScore)
		}
	})

	t.Run("score clamps at zero", func(t *testing.T) {
		table := mustTable(t,
			categoricalColumn("y", "a", "a", "a", "a", "a", "a", "a", "a", "a", "a"),
		)
		// 9 of 10 rows duplicated: 90% doubled exceeds 100.
		q := a.AssessQuality(table)
		if q.QualityScore != 0 {
			t.Errorf("score = %v, want 0", q.QualityScore)
		}
	})
}

func TestProfileDataset(t *testing.T) {
	p := NewProfiler()
	table := mustTable(t,
		numericColumn("age", 25, 31, 47, 52),
		categoricalColumn("city", "a", "b", "a", "c"),
		categoricalColumn("target", "yes", "no", "yes", "no"),
	)

	result, err := p.ProfileDataset(table, "target")
	if err != nil {
		t.Fatalf("ProfileDataset: %v", err)
	}
	if result.Shape.Rows != 4 || result.Shape.Columns != 3 {
		t.Errorf("shape = %+v", result.Shape)
	}
	if len(result.Features) != 2 {
		t.Fatalf("features = %d, want 2 (target excluded)", len(result.Features))
	}
	if _, ok := result.Features["target"]; ok {
		t.Error("target profiled as a feature")
	}
	if result.Target.SuggestedTask != profile.TaskClassification {
		t.Errorf("task = %s", result.Target.SuggestedTask)
	}
}

func TestProfileDatasetErrors(t *testing.T) {
	p := NewProfiler()
	table := mustTable(t, numericColumn("x", 1, 2, 3))

	if _, err := p.ProfileDataset(nil, "x"); err == nil {
		t.Error("nil table accepted")
	}
	if _, err := p.ProfileDataset(table, "missing"); err == nil {
		t.Error("unknown target accepted")
	}
}

func TestRecommendations(t *testing.T) {
	p := NewProfiler()

	// 60 rows, mostly-missing feature and a high-cardinality feature.
	nan := math.NaN()
	sparse := make([]float64, 60)
	ids := make([]string, 60)
	target := make([]string, 60)
	for i := range sparse {
		sparse[i] = nan
		ids[i] = fmt.Sprintf("id-%d", i)
		if i < 50 {
			target[i] = "a"
		} else {
			target[i] = "b"
		}
	}

	table := mustTable(t,
		numericColumn("sparse", sparse...),
		categoricalColumn("id", ids...),
		categoricalColumn("target", target...),
	)
	result, err := p.ProfileDataset(table, "target")
	if err != nil {
		t.Fatal(err)
	}

	var hasMissing, hasImbalance, hasDropAdvice, hasCardinality bool
	for _, rec := range result.Recommendations {
		switch {
		case rec == "High missing data detected. Consider imputation strategies.":
			hasMissing = true
		case rec == "Target is imbalanced (ratio: 5.00). Consider class balancing techniques.":
			hasImbalance = true
		case rec == "Consider dropping features with >50% missing: sparse":
			hasDropAdvice = true
		case rec == "High cardinality features detected: id. Target encoding recommended.":
			hasCardinality = true
		}
	}
	if !hasMissing || !hasImbalance || !hasDropAdvice || !hasCardinality {
		t.Errorf("recommendations incomplete: %v", result.Recommendations)
	}
}
