package dataset

import (
	"time"

	"autopipe/domain/core"
)

// Status represents the processing state of a stored dataset
type Status string

const (
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// Record is the persisted metadata for an uploaded dataset. The raw bytes
// live in the file store (encrypted at rest); the table itself is rebuilt
// from those bytes on demand.
type Record struct {
	ID     core.DatasetID `json:"id"`
	UserID core.UserID    `json:"user_id"`

	OriginalFilename string `json:"original_filename"`
	FilePath         string `json:"file_path,omitempty"`
	FileSize         int64  `json:"file_size"`

	RowCount    int     `json:"row_count"`
	ColumnCount int     `json:"column_count"`
	MissingRate float64 `json:"missing_rate"`

	TargetColumn string `json:"target_column,omitempty"`

	Status       Status `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
