package explain

import (
	"fmt"
	"strings"

	"autopipe/domain/pipeline"
	"autopipe/domain/profile"
)

// Renderer turns a pipeline configuration and its dataset profile into a
// human-readable Markdown report. Pure string composition: no external
// calls, no randomness; identical input yields identical text.
type Renderer struct{}

// NewRenderer creates an explanation renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the full report.
func (r *Renderer) Render(cfg *pipeline.Config, p *profile.DatasetProfile) string {
	var parts []string

	parts = append(parts, "## Pipeline Generation Report\n")

	parts = append(parts, fmt.Sprintf("**Dataset:** %d rows, %d columns",
		p.Quality.TotalRows, p.Quality.TotalColumns))
	parts = append(parts, fmt.Sprintf("**Data Quality Score:** %.1f/100\n", p.Quality.QualityScore))

	parts = append(parts, "### Preprocessing Decisions")

	if n := len(cfg.Preprocessing.DropFeatures); n > 0 {
		parts = append(parts, fmt.Sprintf(
			"- **Dropped %d features** due to excessive missing data (>60%%)", n))
	}
	parts = append(parts, fmt.Sprintf(
		"- **Numeric features:** %d (scaled using StandardScaler)",
		len(cfg.Preprocessing.NumericFeatures)))
	parts = append(parts, fmt.Sprintf(
		"- **Categorical features:** %d (encoded based on cardinality)",
		len(cfg.Preprocessing.CategoricalFeatures)))

	parts = append(parts, r.encodingSummary(cfg)...)

	parts = append(parts, "\n### Model Selection")
	parts = append(parts, fmt.Sprintf(
		"Selected %d models based on dataset characteristics:", len(cfg.Models)))
	for _, m := range cfg.Models {
		parts = append(parts, fmt.Sprintf("- **%s**: %s", m.Name, m.Description))
	}

	if cfg.ClassBalancing != nil {
		parts = append(parts,
			"\n**Class Imbalance Handling:** Using weighted classes to handle imbalanced target")
	}
	if cfg.FeatureEngineering.FeatureSelection {
		parts = append(parts, "\n**Feature Selection:** Applied due to high dimensionality")
	}

	return strings.Join(parts, "\n")
}

// encodingSummary aggregates the per-column encoding map into counts per
// method, in a fixed onehot/label/target order.
func (r *Renderer) encodingSummary(cfg *pipeline.Config) []string {
	counts := map[pipeline.EncodingMethod]int{}
	for _, method := range cfg.Preprocessing.EncodingStrategy {
		counts[method]++
	}
	if len(counts) == 0 {
		return nil
	}

	lines := []string{"\n**Encoding Strategy:**"}
	if n := counts[pipeline.EncodeOneHot]; n > 0 {
		lines = append(lines, fmt.Sprintf("- OneHot Encoding: %d low-cardinality features", n))
	}
	if n := counts[pipeline.EncodeLabel]; n > 0 {
		lines = append(lines, fmt.Sprintf("- Label Encoding: %d medium-cardinality features", n))
	}
	if n := counts[pipeline.EncodeTarget]; n > 0 {
		lines = append(lines, fmt.Sprintf("- Target Encoding: %d high-cardinality features", n))
	}
	return lines
}
