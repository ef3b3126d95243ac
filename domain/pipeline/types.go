package pipeline

import (
	"fmt"

	"autopipe/domain/profile"
)

// EncodingMethod converts categorical values to a numeric representation.
type EncodingMethod string

const (
	EncodeOneHot EncodingMethod = "onehot"
	EncodeLabel  EncodingMethod = "label"
	EncodeTarget EncodingMethod = "target"
)

// ImputationMethod fills missing values deterministically.
type ImputationMethod string

const (
	ImputeMean   ImputationMethod = "mean"
	ImputeMedian ImputationMethod = "median"
	ImputeMode   ImputationMethod = "mode"
)

// ScalingMethod is the numeric scaling applied before modeling.
type ScalingMethod string

const ScaleStandard ScalingMethod = "standardscaler"

// ClassBalancing tags the strategy used for imbalanced targets.
type ClassBalancing string

const BalanceClassWeight ClassBalancing = "class_weight"

// Preprocessing holds the feature routing and per-column treatment. Every
// profiled feature lands in exactly one of the three lists.
type Preprocessing struct {
	NumericFeatures     []string                    `json:"numeric_features"`
	CategoricalFeatures []string                    `json:"categorical_features"`
	DropFeatures        []string                    `json:"drop_features"`
	ImputationStrategy  map[string]ImputationMethod `json:"imputation_strategy"`
	ScalingMethod       ScalingMethod               `json:"scaling_method"`
	EncodingStrategy    map[string]EncodingMethod   `json:"encoding_strategy"`
}

// FeatureEngineering holds dataset-wide transformations.
type FeatureEngineering struct {
	PolynomialFeatures     bool     `json:"polynomial_features"`
	FeatureSelection       bool     `json:"feature_selection"`
	FeatureSelectionMethod string   `json:"feature_selection_method"`
	OutlierTreatment       []string `json:"outlier_treatment"`
}

// ModelSpec is a candidate estimator specification, not a fitted model.
type ModelSpec struct {
	Name            string         `json:"name"`
	Type            string         `json:"type"`
	Hyperparameters map[string]any `json:"hyperparameters"`
	Description     string         `json:"description"`
}

// Validation describes the split scheme consumed downstream.
type Validation struct {
	Method   string  `json:"method"`
	TestSize float64 `json:"test_size"`
	CVFolds  int     `json:"cv_folds"`
	Stratify bool    `json:"stratify"`
}

// Decision is one audit-trail record: which rule fired on which feature,
// why, and what it changed.
type Decision struct {
	Feature string `json:"feature"`
	Rule    string `json:"rule"`
	Reason  string `json:"reason"`
	Action  string `json:"action"`
}

// Config is the fully self-describing pipeline configuration. Every field
// is literally present on the wire; the trainer never defends against
// missing keys.
type Config struct {
	Preprocessing      Preprocessing      `json:"preprocessing"`
	FeatureEngineering FeatureEngineering `json:"feature_engineering"`
	Models             []ModelSpec        `json:"models"`
	Validation         Validation         `json:"validation"`
	EvaluationMetrics  []string           `json:"evaluation_metrics"`
	ClassBalancing     *ClassBalancing    `json:"class_balancing"`
	Decisions          []Decision         `json:"decisions"`
}

// New returns an empty config with the fixed defaults every pipeline
// starts from: standard scaling, 80/20 split, 5-fold CV noted for
// downstream, stratified for classification.
func New(task profile.TaskType) *Config {
	return &Config{
		Preprocessing: Preprocessing{
			NumericFeatures:     []string{},
			CategoricalFeatures: []string{},
			DropFeatures:        []string{},
			ImputationStrategy:  map[string]ImputationMethod{},
			ScalingMethod:       ScaleStandard,
			EncodingStrategy:    map[string]EncodingMethod{},
		},
		FeatureEngineering: FeatureEngineering{
			FeatureSelectionMethod: "none",
			OutlierTreatment:       []string{},
		},
		Models: []ModelSpec{},
		Validation: Validation{
			Method:   "train_test_split",
			TestSize: 0.2,
			CVFolds:  5,
			Stratify: task == profile.TaskClassification,
		},
		EvaluationMetrics: []string{},
		Decisions:         []Decision{},
	}
}

// Validate checks the structural invariants a well-formed config must hold:
// the three feature lists are pairwise disjoint, encoding entries exist iff
// the column is categorical, and the model shortlist is not empty.
func (c *Config) Validate() error {
	seen := make(map[string]string)
	for _, f := range c.Preprocessing.DropFeatures {
		seen[f] = "drop_features"
	}
	for _, f := range c.Preprocessing.NumericFeatures {
		if prev, dup := seen[f]; dup {
			return fmt.Errorf("feature %q in both %s and numeric_features", f, prev)
		}
		seen[f] = "numeric_features"
	}
	categorical := make(map[string]bool, len(c.Preprocessing.CategoricalFeatures))
	for _, f := range c.Preprocessing.CategoricalFeatures {
		if prev, dup := seen[f]; dup {
			return fmt.Errorf("feature %q in both %s and categorical_features", f, prev)
		}
		seen[f] = "categorical_features"
		categorical[f] = true
	}
	for col := range c.Preprocessing.EncodingStrategy {
		if !categorical[col] {
			return fmt.Errorf("encoding strategy for non-categorical column %q", col)
		}
	}
	for _, f := range c.Preprocessing.CategoricalFeatures {
		if _, ok := c.Preprocessing.EncodingStrategy[f]; !ok {
			return fmt.Errorf("categorical column %q has no encoding strategy", f)
		}
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("model shortlist is empty")
	}
	return nil
}
