package rules

import (
	"fmt"
	"math"
	"sort"

	"autopipe/domain/pipeline"
	"autopipe/domain/profile"
	"autopipe/internal/errors"
)

// Per-feature rule thresholds. Fixed design constants.
const (
	// DropMissingThreshold sends a feature to drop_features.
	DropMissingThreshold = 60.0

	// SkewedImputationThreshold switches numeric imputation to median.
	SkewedImputationThreshold = 1.0

	// OutlierFlagThreshold adds a feature to outlier treatment.
	OutlierFlagThreshold = 10.0

	// Encoding cardinality bounds: below OneHotMaxUnique is onehot, below
	// TargetEncodingMinUnique is label, at or above it is target encoding.
	OneHotMaxUnique         = 10
	TargetEncodingMinUnique = 50

	// FeatureSelectionThreshold enables selectkbest when the retained
	// feature count exceeds it.
	FeatureSelectionThreshold = 50
)

// Engine deterministically maps a DatasetProfile and task type to a
// PipelineConfig. It holds no state; two calls with identical inputs yield
// byte-identical configurations.
type Engine struct{}

// NewEngine creates a rule engine.
func NewEngine() *Engine {
	return &Engine{}
}

// GeneratePipeline applies the rule set to a profile. Malformed profiles
// return a RULE_ENGINE_ERROR; callers go through the fallback ladder, which
// absorbs it.
func (e *Engine) GeneratePipeline(p *profile.DatasetProfile, task profile.TaskType) (*pipeline.Config, error) {
	if p == nil {
		return nil, errors.RuleEngineError("profile is nil")
	}
	if !task.IsValid() {
		return nil, errors.RuleEngineError(fmt.Sprintf("unknown task type %q", task))
	}
	if p.Quality.TotalRows < 0 {
		return nil, errors.RuleEngineError(fmt.Sprintf("negative row count %d", p.Quality.TotalRows))
	}

	cfg := pipeline.New(task)

	// Per-feature rules run in name order so the decision log is stable.
	names := make([]string, 0, len(p.Features))
	for name := range p.Features {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := e.applyFeatureRules(cfg, name, p.Features[name]); err != nil {
			return nil, err
		}
	}

	e.applyDatasetRules(cfg, p, task)

	return cfg, nil
}

// applyFeatureRules routes one feature through the per-feature precedence
// order: drop, type routing, imputation, outlier flag, encoding.
func (e *Engine) applyFeatureRules(cfg *pipeline.Config, name string, f profile.FeatureProfile) error {
	if math.IsNaN(f.MissingPercent) || f.MissingPercent < 0 || f.MissingPercent > 100 {
		return errors.RuleEngineError(fmt.Sprintf("feature %q has invalid missing percent %v", name, f.MissingPercent))
	}
	if f.UniqueCount < 0 {
		return errors.RuleEngineError(fmt.Sprintf("feature %q has negative unique count %d", name, f.UniqueCount))
	}

	// Rule 1: drop on excessive missingness. No further rule applies.
	if f.MissingPercent > DropMissingThreshold {
		cfg.Preprocessing.DropFeatures = append(cfg.Preprocessing.DropFeatures, name)
		cfg.Decisions = append(cfg.Decisions, pipeline.Decision{
			Feature: name,
			Rule:    "DROP_HIGH_MISSING",
			Reason:  fmt.Sprintf("Missing %.1f%% data", f.MissingPercent),
			Action:  "drop",
		})
		return nil
	}

	switch f.FeatureType {
	case profile.FeatureNumeric, profile.FeatureCategoricalNumeric:
		e.applyNumericRules(cfg, name, f)
	case profile.FeatureCategorical:
		e.applyCategoricalRules(cfg, name, f)
	default:
		return errors.RuleEngineError(fmt.Sprintf("feature %q has unknown feature type %q", name, f.FeatureType))
	}
	return nil
}

// applyNumericRules handles imputation and outlier flagging for columns
// routed to numeric_features.
func (e *Engine) applyNumericRules(cfg *pipeline.Config, name string, f profile.FeatureProfile) {
	cfg.Preprocessing.NumericFeatures = append(cfg.Preprocessing.NumericFeatures, name)

	if f.MissingPercent > 0 {
		skew := 0.0
		if f.Skewness != nil {
			skew = f.Skewness.Value()
		}
		if math.Abs(skew) > SkewedImputationThreshold {
			cfg.Preprocessing.ImputationStrategy[name] = pipeline.ImputeMedian
			cfg.Decisions = append(cfg.Decisions, pipeline.Decision{
				Feature: name,
				Rule:    "IMPUTE_SKEWED",
				Reason:  fmt.Sprintf("Skewness: %.2f", skew),
				Action:  "median_imputation",
			})
		} else {
			cfg.Preprocessing.ImputationStrategy[name] = pipeline.ImputeMean
			cfg.Decisions = append(cfg.Decisions, pipeline.Decision{
				Feature: name,
				Rule:    "IMPUTE_MEAN",
				Reason:  fmt.Sprintf("Skewness: %.2f within symmetric range", skew),
				Action:  "mean_imputation",
			})
		}
	}

	if f.OutlierPercent > OutlierFlagThreshold {
		cfg.FeatureEngineering.OutlierTreatment = append(cfg.FeatureEngineering.OutlierTreatment, name)
		cfg.Decisions = append(cfg.Decisions, pipeline.Decision{
			Feature: name,
			Rule:    "TREAT_OUTLIERS",
			Reason:  fmt.Sprintf("%.1f%% outliers", f.OutlierPercent),
			Action:  "flag_outliers",
		})
	}
}

// applyCategoricalRules picks the encoding by cardinality and the
// imputation method for columns routed to categorical_features.
func (e *Engine) applyCategoricalRules(cfg *pipeline.Config, name string, f profile.FeatureProfile) {
	cfg.Preprocessing.CategoricalFeatures = append(cfg.Preprocessing.CategoricalFeatures, name)

	switch {
	case f.UniqueCount < OneHotMaxUnique:
		cfg.Preprocessing.EncodingStrategy[name] = pipeline.EncodeOneHot
		cfg.Decisions = append(cfg.Decisions, pipeline.Decision{
			Feature: name,
			Rule:    "ONEHOT_LOW_CARDINALITY",
			Reason:  fmt.Sprintf("Only %d unique values", f.UniqueCount),
			Action:  "onehot_encoding",
		})
	case f.UniqueCount < TargetEncodingMinUnique:
		cfg.Preprocessing.EncodingStrategy[name] = pipeline.EncodeLabel
		cfg.Decisions = append(cfg.Decisions, pipeline.Decision{
			Feature: name,
			Rule:    "LABEL_MEDIUM_CARDINALITY",
			Reason:  fmt.Sprintf("%d unique values", f.UniqueCount),
			Action:  "label_encoding",
		})
	default:
		cfg.Preprocessing.EncodingStrategy[name] = pipeline.EncodeTarget
		cfg.Decisions = append(cfg.Decisions, pipeline.Decision{
			Feature: name,
			Rule:    "TARGET_HIGH_CARDINALITY",
			Reason:  fmt.Sprintf("High cardinality: %d values", f.UniqueCount),
			Action:  "target_encoding",
		})
	}

	if f.MissingPercent > 0 {
		cfg.Preprocessing.ImputationStrategy[name] = pipeline.ImputeMode
		cfg.Decisions = append(cfg.Decisions, pipeline.Decision{
			Feature: name,
			Rule:    "IMPUTE_MODE",
			Reason:  fmt.Sprintf("Missing %.1f%% data", f.MissingPercent),
			Action:  "mode_imputation",
		})
	}
}

// applyDatasetRules fires the rules that apply once per dataset: feature
// selection, class balancing, model shortlist and metrics.
func (e *Engine) applyDatasetRules(cfg *pipeline.Config, p *profile.DatasetProfile, task profile.TaskType) {
	retained := len(cfg.Preprocessing.NumericFeatures) + len(cfg.Preprocessing.CategoricalFeatures)
	if retained > FeatureSelectionThreshold {
		cfg.FeatureEngineering.FeatureSelection = true
		cfg.FeatureEngineering.FeatureSelectionMethod = "selectkbest"
		cfg.Decisions = append(cfg.Decisions, pipeline.Decision{
			Feature: "ALL",
			Rule:    "FEATURE_SELECTION_HIGH_DIM",
			Reason:  fmt.Sprintf("Too many features (%d)", len(p.Features)),
			Action:  "apply_feature_selection",
		})
	}

	balanced := false
	if task == profile.TaskClassification && p.Target.IsImbalanced {
		balanced = true
		strategy := pipeline.BalanceClassWeight
		cfg.ClassBalancing = &strategy
		cfg.Decisions = append(cfg.Decisions, pipeline.Decision{
			Feature: "TARGET",
			Rule:    "BALANCE_CLASSES",
			Reason:  fmt.Sprintf("Imbalance ratio: %.2f", float64(p.Target.ImbalanceRatio)),
			Action:  "use_class_weights",
		})
	}

	cfg.EvaluationMetrics = Metrics(task)
	cfg.Models = Shortlist(task, p.Quality.TotalRows, balanced)
}
