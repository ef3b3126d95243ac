package ports

import (
	"context"

	"autopipe/domain/pipeline"
	"autopipe/domain/profile"
)

// NarrativePort produces prose around a generated pipeline. External
// text-generation services implement this; the shipped adapter is the
// deterministic heuristic renderer, so the service works with no remote
// model configured.
type NarrativePort interface {
	ExplainPipeline(ctx context.Context, cfg *pipeline.Config, p *profile.DatasetProfile) (*Narrative, error)
}

// Narrative is generated prose plus provenance.
type Narrative struct {
	Text string `json:"text"` // UTF-8 Markdown

	// Source identifies the generator: "heuristic" or a remote model name.
	Source string `json:"source"`
}
