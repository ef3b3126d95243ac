package rules

import (
	"autopipe/domain/pipeline"
	"autopipe/domain/profile"
)

// Row count bands for model selection.
const (
	smallDatasetRows = 1000
	largeDatasetRows = 10000
)

// Fixed evaluation metric sets per task.
var (
	classificationMetrics = []string{"accuracy", "precision", "recall", "f1", "roc_auc"}
	regressionMetrics     = []string{"mse", "rmse", "mae", "r2"}
)

// Shortlist returns the candidate estimator specs for a task and dataset
// size. The hyperparameter defaults are design constants; balanced adds
// class_weight to every classifier in the list.
func Shortlist(task profile.TaskType, rows int, balanced bool) []pipeline.ModelSpec {
	var specs []pipeline.ModelSpec

	if task == profile.TaskClassification {
		switch {
		case rows < smallDatasetRows:
			specs = []pipeline.ModelSpec{
				{
					Name:            "Logistic Regression",
					Type:            "LogisticRegression",
					Hyperparameters: map[string]any{"max_iter": 1000},
					Description:     "Fast and interpretable for small datasets",
				},
				{
					Name:            "Decision Tree",
					Type:            "DecisionTreeClassifier",
					Hyperparameters: map[string]any{"max_depth": 10},
					Description:     "Simple and interpretable tree-based model",
				},
			}
		case rows < largeDatasetRows:
			specs = []pipeline.ModelSpec{
				{
					Name:            "Random Forest",
					Type:            "RandomForestClassifier",
					Hyperparameters: map[string]any{"n_estimators": 100, "max_depth": 15},
					Description:     "Robust ensemble method for medium datasets",
				},
				{
					Name:            "Gradient Boosting",
					Type:            "GradientBoostingClassifier",
					Hyperparameters: map[string]any{"n_estimators": 100, "max_depth": 5, "learning_rate": 0.1},
					Description:     "Powerful boosting algorithm",
				},
				{
					Name:            "Logistic Regression",
					Type:            "LogisticRegression",
					Hyperparameters: map[string]any{"max_iter": 1000},
					Description:     "Baseline linear model",
				},
			}
		default:
			specs = []pipeline.ModelSpec{
				{
					Name:            "Random Forest",
					Type:            "RandomForestClassifier",
					Hyperparameters: map[string]any{"n_estimators": 200, "max_depth": 20, "n_jobs": -1},
					Description:     "Scalable ensemble for large datasets",
				},
				{
					Name:            "Gradient Boosting",
					Type:            "GradientBoostingClassifier",
					Hyperparameters: map[string]any{"n_estimators": 150, "max_depth": 7, "learning_rate": 0.1},
					Description:     "High-performance boosting",
				},
			}
		}
		if balanced {
			for i := range specs {
				specs[i].Hyperparameters["class_weight"] = "balanced"
			}
		}
		return specs
	}

	switch {
	case rows < smallDatasetRows:
		specs = []pipeline.ModelSpec{
			{
				Name:            "Linear Regression",
				Type:            "LinearRegression",
				Hyperparameters: map[string]any{},
				Description:     "Simple linear model for small datasets",
			},
			{
				Name:            "Decision Tree",
				Type:            "DecisionTreeRegressor",
				Hyperparameters: map[string]any{"max_depth": 10},
				Description:     "Non-linear tree-based model",
			},
		}
	case rows < largeDatasetRows:
		specs = []pipeline.ModelSpec{
			{
				Name:            "Random Forest",
				Type:            "RandomForestRegressor",
				Hyperparameters: map[string]any{"n_estimators": 100, "max_depth": 15},
				Description:     "Robust ensemble for regression",
			},
			{
				Name:            "Gradient Boosting",
				Type:            "GradientBoostingRegressor",
				Hyperparameters: map[string]any{"n_estimators": 100, "max_depth": 5, "learning_rate": 0.1},
				Description:     "Powerful boosting for regression",
			},
			{
				Name:            "Linear Regression",
				Type:            "LinearRegression",
				Hyperparameters: map[string]any{},
				Description:     "Baseline linear model",
			},
		}
	default:
		specs = []pipeline.ModelSpec{
			{
				Name:            "Random Forest",
				Type:            "RandomForestRegressor",
				Hyperparameters: map[string]any{"n_estimators": 200, "max_depth": 20, "n_jobs": -1},
				Description:     "Scalable regression ensemble",
			},
			{
				Name:            "Gradient Boosting",
				Type:            "GradientBoostingRegressor",
				Hyperparameters: map[string]any{"n_estimators": 150, "max_depth": 7, "learning_rate": 0.1},
				Description:     "High-performance regression",
			},
		}
	}
	return specs
}

// Metrics returns the fixed evaluation metric set for a task. The slice is
// copied so callers cannot mutate the catalog.
func Metrics(task profile.TaskType) []string {
	var src []string
	if task == profile.TaskClassification {
		src = classificationMetrics
	} else {
		src = regressionMetrics
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
