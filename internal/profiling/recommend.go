package profiling

import (
	"fmt"
	"sort"
	"strings"

	"autopipe/domain/profile"
)

// buildRecommendations derives advisory strings from a finished profile.
// They are informational only; the rule engine does not consume them.
func buildRecommendations(p *profile.DatasetProfile) []string {
	recs := []string{}

	if p.Quality.MissingPercent > 20 {
		recs = append(recs, "High missing data detected. Consider imputation strategies.")
	}
	if p.Quality.DuplicatePercent > 5 {
		recs = append(recs, "Duplicate rows detected. Removal recommended.")
	}
	if p.Target.IsImbalanced {
		recs = append(recs, fmt.Sprintf(
			"Target is imbalanced (ratio: %.2f). Consider class balancing techniques.",
			float64(p.Target.ImbalanceRatio)))
	}

	highMissing := featureNamesWhere(p, func(f profile.FeatureProfile) bool {
		return f.MissingPercent > 50
	})
	if len(highMissing) > 0 {
		recs = append(recs, fmt.Sprintf(
			"Consider dropping features with >50%% missing: %s",
			strings.Join(firstN(highMissing, 3), ", ")))
	}

	highCardinality := featureNamesWhere(p, func(f profile.FeatureProfile) bool {
		return f.IsHighCardinality
	})
	if len(highCardinality) > 0 {
		recs = append(recs, fmt.Sprintf(
			"High cardinality features detected: %s. Target encoding recommended.",
			strings.Join(firstN(highCardinality, 3), ", ")))
	}

	return recs
}

func featureNamesWhere(p *profile.DatasetProfile, match func(profile.FeatureProfile) bool) []string {
	names := []string{}
	for name, f := range p.Features {
		if match(f) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
