package pipeline

import (
	"time"

	"autopipe/domain/core"
	"autopipe/domain/profile"
)

// Record is a persisted pipeline generation: the profile and configuration
// are stored as opaque structured documents (JSONB), exactly as produced.
type Record struct {
	ID        core.PipelineID         `json:"id"`
	DatasetID core.DatasetID          `json:"dataset_id"`
	TaskType  profile.TaskType        `json:"task_type"`
	Tier      int                     `json:"tier"`
	Config    *Config                 `json:"config"`
	Profile   *profile.DatasetProfile `json:"profile"`
	CreatedAt time.Time               `json:"created_at"`
}
