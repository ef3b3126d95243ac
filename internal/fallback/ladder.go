package fallback

import (
	"math"
	"sort"

	"autopipe/domain/pipeline"
	"autopipe/domain/profile"
	"autopipe/internal"
	"autopipe/internal/errors"
	"autopipe/internal/rules"
)

// Tier identifies which rung of the ladder produced a pipeline.
type Tier int

const (
	// TierPrimary is the rule engine on the full profile.
	TierPrimary Tier = 1
	// TierSimplified is the rule engine on a stripped profile.
	TierSimplified Tier = 2
	// TierMinimalSafe bypasses the rule engine entirely.
	TierMinimalSafe Tier = 3
)

// MaxEngineAttempts bounds rule-engine invocations across tiers 1 and 2.
// The bound is an explicit counter, not call depth.
const MaxEngineAttempts = 3

// AttemptRecord captures one failed rule-engine attempt.
type AttemptRecord struct {
	Attempt int    `json:"attempt"`
	Tier    Tier   `json:"tier"`
	Reason  string `json:"reason"`
}

// Outcome is the ladder's result: a pipeline configuration, the tier that
// produced it, and the failures absorbed along the way.
type Outcome struct {
	Config   *pipeline.Config `json:"config"`
	Tier     Tier             `json:"tier"`
	Failures []AttemptRecord  `json:"failures,omitempty"`
}

// Ladder wraps the rule engine with a bounded degrade-and-retry scheme.
// A caller always receives a valid pipeline configuration; engine failures
// are recorded, never propagated.
type Ladder struct {
	engine *rules.Engine
	logger *internal.Logger
}

// NewLadder creates a fallback ladder around the given engine.
func NewLadder(engine *rules.Engine) *Ladder {
	return &Ladder{engine: engine, logger: internal.DefaultLogger.WithComponent("ladder")}
}

// GeneratePipeline runs the ladder. Attempt 1 uses the full profile;
// attempts 2 and 3 retry on a simplified profile. After three failures the
// minimal-safe pipeline is emitted unconditionally. The returned error is
// non-nil only when the minimal-safe tier itself violates the config
// invariants, which is a fatal internal bug, not an input problem.
func (l *Ladder) GeneratePipeline(p *profile.DatasetProfile, task profile.TaskType) (*Outcome, error) {
	outcome := &Outcome{}

	var simplified *profile.DatasetProfile
	for attempt := 1; attempt <= MaxEngineAttempts; attempt++ {
		input := p
		tier := TierPrimary
		if attempt > 1 {
			if simplified == nil {
				simplified = simplifyProfile(p)
			}
			input = simplified
			tier = TierSimplified
		}

		cfg, err := l.engine.GeneratePipeline(input, task)
		if err == nil {
			outcome.Config = cfg
			outcome.Tier = tier
			return outcome, nil
		}

		l.logger.Warn("pipeline generation attempt %d failed: %v", attempt, err)
		outcome.Failures = append(outcome.Failures, AttemptRecord{
			Attempt: attempt,
			Tier:    tier,
			Reason:  err.Error(),
		})
	}

	cfg := minimalSafePipeline(p, task)
	if err := cfg.Validate(); err != nil {
		// The one failure this package is allowed to surface.
		return nil, errors.FallbackExhausted(err)
	}
	outcome.Config = cfg
	outcome.Tier = TierMinimalSafe
	return outcome, nil
}

// simplifyProfile strips each feature down to identity, type, missingness
// and cardinality, normalizing malformed values so the retry has a chance
// of passing engine validation.
func simplifyProfile(p *profile.DatasetProfile) *profile.DatasetProfile {
	if p == nil {
		return &profile.DatasetProfile{Features: map[string]profile.FeatureProfile{}}
	}

	s := &profile.DatasetProfile{
		Shape:    p.Shape,
		Target:   p.Target,
		Quality:  p.Quality,
		Features: make(map[string]profile.FeatureProfile, len(p.Features)),
	}
	if s.Quality.TotalRows < 0 {
		s.Quality.TotalRows = 0
	}

	for name, f := range p.Features {
		sf := f.Simplified()
		if !sf.FeatureType.IsValid() {
			sf.FeatureType = profile.FeatureNumeric
		}
		switch {
		case math.IsNaN(sf.MissingPercent) || sf.MissingPercent < 0:
			sf.MissingPercent = 0
		case sf.MissingPercent > 100:
			sf.MissingPercent = 100
		}
		if sf.UniqueCount < 0 {
			sf.UniqueCount = 0
		}
		s.Features[name] = sf
	}
	return s
}

// minimalSafePipeline emits a fixed pipeline valid for any tabular input:
// label encoding everywhere (no dimensionality blowup), two reliable
// models, fixed metrics, a single synthetic decision record.
func minimalSafePipeline(p *profile.DatasetProfile, task profile.TaskType) *pipeline.Config {
	if task != profile.TaskClassification {
		task = profile.TaskRegression
	}
	cfg := pipeline.New(task)
	cfg.Validation.Stratify = task == profile.TaskClassification

	names := []string{}
	if p != nil {
		for name := range p.Features {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if p.Features[name].FeatureType == profile.FeatureNumeric {
			cfg.Preprocessing.NumericFeatures = append(cfg.Preprocessing.NumericFeatures, name)
		} else {
			cfg.Preprocessing.CategoricalFeatures = append(cfg.Preprocessing.CategoricalFeatures, name)
			cfg.Preprocessing.EncodingStrategy[name] = pipeline.EncodeLabel
		}
	}

	if task == profile.TaskClassification {
		cfg.Models = []pipeline.ModelSpec{
			{
				Name:            "Logistic Regression",
				Type:            "LogisticRegression",
				Hyperparameters: map[string]any{"max_iter": 1000},
				Description:     "Reliable linear classifier",
			},
			{
				Name:            "Random Forest",
				Type:            "RandomForestClassifier",
				Hyperparameters: map[string]any{"n_estimators": 50, "max_depth": 10},
				Description:     "Robust ensemble method",
			},
		}
		cfg.EvaluationMetrics = []string{"accuracy", "precision", "recall", "f1"}
	} else {
		cfg.Models = []pipeline.ModelSpec{
			{
				Name:            "Linear Regression",
				Type:            "LinearRegression",
				Hyperparameters: map[string]any{},
				Description:     "Simple linear predictor",
			},
			{
				Name:            "Random Forest",
				Type:            "RandomForestRegressor",
				Hyperparameters: map[string]any{"n_estimators": 50, "max_depth": 10},
				Description:     "Robust ensemble method",
			},
		}
		cfg.EvaluationMetrics = []string{"mse", "rmse", "mae", "r2"}
	}

	cfg.Decisions = []pipeline.Decision{{
		Feature: "FALLBACK",
		Rule:    "MINIMAL_SAFE_PIPELINE",
		Reason:  "Using simplified pipeline for robustness",
		Action:  "apply_safe_defaults",
	}}

	return cfg
}
