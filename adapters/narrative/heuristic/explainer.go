// Package heuristic explains pipelines without any external model: it wraps
// the deterministic Markdown renderer behind the narrative port so remote
// generators can be swapped in later.
package heuristic

import (
	"context"

	"autopipe/domain/pipeline"
	"autopipe/domain/profile"
	"autopipe/internal/explain"
	"autopipe/ports"
)

// Explainer implements NarrativePort using the rule-based renderer.
type Explainer struct {
	renderer *explain.Renderer
}

// NewExplainer creates a heuristic explainer.
func NewExplainer() *Explainer {
	return &Explainer{renderer: explain.NewRenderer()}
}

var _ ports.NarrativePort = (*Explainer)(nil)

// ExplainPipeline renders the decision explanation for a generated pipeline.
func (e *Explainer) ExplainPipeline(ctx context.Context, cfg *pipeline.Config, p *profile.DatasetProfile) (*ports.Narrative, error) {
	return &ports.Narrative{
		Text:   e.renderer.Render(cfg, p),
		Source: "heuristic",
	}, nil
}
