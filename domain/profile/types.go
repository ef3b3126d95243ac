package profile

// TaskType is the prediction task suggested for a target column.
type TaskType string

const (
	TaskClassification TaskType = "classification"
	TaskRegression     TaskType = "regression"
)

// IsValid reports whether the task type is one of the known values.
func (t TaskType) IsValid() bool {
	return t == TaskClassification || t == TaskRegression
}

// FeatureType is the semantic classification of a feature column.
type FeatureType string

const (
	FeatureNumeric FeatureType = "numeric"
	// FeatureCategoricalNumeric marks numeric storage that behaves like a
	// categorical variable (fewer than 10 distinct values over 50+ rows).
	FeatureCategoricalNumeric FeatureType = "categorical_numeric"
	FeatureCategorical        FeatureType = "categorical"
)

// IsValid reports whether the feature type is one of the known values.
func (f FeatureType) IsValid() bool {
	switch f {
	case FeatureNumeric, FeatureCategoricalNumeric, FeatureCategorical:
		return true
	}
	return false
}

// Shape is the dataset extent.
type Shape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// DatasetProfile is the immutable result of profiling one dataset for one
// target column. It is produced fresh per request; nothing in it is shared
// between analyses.
type DatasetProfile struct {
	Shape           Shape                     `json:"shape"`
	Target          TargetAnalysis            `json:"target_analysis"`
	Features        map[string]FeatureProfile `json:"feature_analysis"`
	Quality         DataQuality               `json:"data_quality"`
	Recommendations []string                  `json:"recommendations"`
}

// TargetAnalysis describes the prediction target.
type TargetAnalysis struct {
	Name           string   `json:"name"`
	DType          string   `json:"dtype"`
	MissingCount   int      `json:"missing_count"`
	MissingPercent float64  `json:"missing_percent"`
	UniqueCount    int      `json:"unique_count"`
	SuggestedTask  TaskType `json:"suggested_task"`

	// Numeric target that looks categorical (unique ratio below the 5% rule).
	IsNumericCategorical bool `json:"is_numeric_categorical,omitempty"`

	// Regression statistics, over non-missing values only.
	Mean     *Float `json:"mean,omitempty"`
	Std      *Float `json:"std,omitempty"`
	Min      *Float `json:"min,omitempty"`
	Max      *Float `json:"max,omitempty"`
	Skewness *Float `json:"skewness,omitempty"`

	// Classification distribution.
	ClassCounts    map[string]int `json:"class_counts,omitempty"`
	ImbalanceRatio Float          `json:"imbalance_ratio,omitempty"`
	IsImbalanced   bool           `json:"is_imbalanced,omitempty"`
}

// FeatureProfile describes one non-target column.
type FeatureProfile struct {
	Name             string      `json:"name"`
	DType            string      `json:"dtype"`
	FeatureType      FeatureType `json:"feature_type"`
	MissingCount     int         `json:"missing_count"`
	MissingPercent   float64     `json:"missing_percent"`
	UniqueCount      int         `json:"unique_count"`
	CardinalityRatio float64     `json:"cardinality_ratio"`

	// Numeric statistics. Nil when the column is categorical or all-missing.
	Mean     *Float `json:"mean,omitempty"`
	Std      *Float `json:"std,omitempty"`
	Min      *Float `json:"min,omitempty"`
	Max      *Float `json:"max,omitempty"`
	Median   *Float `json:"median,omitempty"`
	Skewness *Float `json:"skewness,omitempty"`
	Kurtosis *Float `json:"kurtosis,omitempty"`

	OutlierCount   int     `json:"outlier_count,omitempty"`
	OutlierPercent float64 `json:"outlier_percent,omitempty"`

	TargetCorrelation   *Float `json:"target_correlation,omitempty"`
	CorrelationStrength string `json:"correlation_strength,omitempty"`

	// Categorical statistics.
	TopCategories     map[string]int `json:"top_categories,omitempty"`
	Mode              string         `json:"mode,omitempty"`
	ModeFrequency     int            `json:"mode_frequency,omitempty"`
	ModePercent       float64        `json:"mode_percent,omitempty"`
	IsHighCardinality bool           `json:"is_high_cardinality,omitempty"`

	IsCritical     bool `json:"is_critical"`
	NeedsAttention bool `json:"needs_attention"`
}

// DataQuality aggregates table-level quality metrics.
type DataQuality struct {
	TotalRows        int     `json:"total_rows"`
	TotalColumns     int     `json:"total_columns"`
	TotalMissing     int     `json:"total_missing"`
	MissingPercent   float64 `json:"missing_percent"`
	DuplicateRows    int     `json:"duplicate_rows"`
	DuplicatePercent float64 `json:"duplicate_percent"`
	QualityScore     float64 `json:"quality_score"`
}

// Simplified strips a feature profile down to the fields the fallback
// ladder retries with: identity, type, missingness and cardinality.
func (f FeatureProfile) Simplified() FeatureProfile {
	return FeatureProfile{
		Name:           f.Name,
		DType:          f.DType,
		FeatureType:    f.FeatureType,
		MissingPercent: f.MissingPercent,
		UniqueCount:    f.UniqueCount,
	}
}
