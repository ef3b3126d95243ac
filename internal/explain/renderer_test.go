package explain

import (
	"strings"
	"testing"

	"autopipe/domain/pipeline"
	"autopipe/domain/profile"
)

func sampleInputs() (*pipeline.Config, *profile.DatasetProfile) {
	cfg := pipeline.New(profile.TaskClassification)
	cfg.Preprocessing.NumericFeatures = []string{"age", "income"}
	cfg.Preprocessing.CategoricalFeatures = []string{"city", "segment", "sku"}
	cfg.Preprocessing.DropFeatures = []string{"notes"}
	cfg.Preprocessing.EncodingStrategy = map[string]pipeline.EncodingMethod{
		"city":    pipeline.EncodeOneHot,
		"segment": pipeline.EncodeLabel,
		"sku":     pipeline.EncodeTarget,
	}
	cfg.Models = []pipeline.ModelSpec{
		{Name: "Random Forest", Description: "Robust ensemble method for medium datasets"},
		{Name: "Logistic Regression", Description: "Baseline linear model"},
	}
	balancing := pipeline.BalanceClassWeight
	cfg.ClassBalancing = &balancing
	cfg.FeatureEngineering.FeatureSelection = true

	p := &profile.DatasetProfile{
		Quality: profile.DataQuality{
			TotalRows:    1200,
			TotalColumns: 7,
			QualityScore: 86.5,
		},
	}
	return cfg, p
}

func TestRenderSections(t *testing.T) {
	cfg, p := sampleInputs()
	out := NewRenderer().Render(cfg, p)

	wantLines := []string{
		"## Pipeline Generation Report",
		"**Dataset:** 1200 rows, 7 columns",
		"**Data Quality Score:** 86.5/100",
		"### Preprocessing Decisions",
		"- **Dropped 1 features** due to excessive missing data (>60%)",
		"- **Numeric features:** 2 (scaled using StandardScaler)",
		"- **Categorical features:** 3 (encoded based on cardinality)",
		"- OneHot Encoding: 1 low-cardinality features",
		"- Label Encoding: 1 medium-cardinality features",
		"- Target Encoding: 1 high-cardinality features",
		"### Model Selection",
		"Selected 2 models based on dataset characteristics:",
		"- **Random Forest**: Robust ensemble method for medium datasets",
		"- **Logistic Regression**: Baseline linear model",
		"**Class Imbalance Handling:** Using weighted classes to handle imbalanced target",
		"**Feature Selection:** Applied due to high dimensionality",
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line) {
			t.Errorf("report missing line %q", line)
		}
	}
}

func TestRenderOmitsAbsentSections(t *testing.T) {
	cfg := pipeline.New(profile.TaskRegression)
	cfg.Models = []pipeline.ModelSpec{
		{Name: "Linear Regression", Description: "Simple linear model for small datasets"},
	}
	p := &profile.DatasetProfile{
		Quality: profile.DataQuality{TotalRows: 100, TotalColumns: 3, QualityScore: 100},
	}

	out := NewRenderer().Render(cfg, p)
	for _, absent := range []string{
		"Dropped",
		"Encoding Strategy",
		"Class Imbalance Handling",
		"Feature Selection",
	} {
		if strings.Contains(out, absent) {
			t.Errorf("report unexpectedly contains %q", absent)
		}
	}
	if !strings.Contains(out, "- **Numeric features:** 0 (scaled using StandardScaler)") {
		t.Error("numeric feature count line missing")
	}
}

func TestRenderDeterministic(t *testing.T) {
	cfg, p := sampleInputs()
	r := NewRenderer()
	first := r.Render(cfg, p)
	for i := 0; i < 10; i++ {
		if r.Render(cfg, p) != first {
			t.Fatal("render output varies across calls")
		}
	}
}

func TestEncodingOrderFixed(t *testing.T) {
	cfg, p := sampleInputs()
	out := NewRenderer().Render(cfg, p)

	oneHot := strings.Index(out, "OneHot Encoding")
	label := strings.Index(out, "Label Encoding")
	target := strings.Index(out, "Target Encoding")
	if !(oneHot < label && label < target) {
		t.Errorf("encoding lines out of order: %d %d %d", oneHot, label, target)
	}
}
