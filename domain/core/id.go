package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Falls back to v4 if v7 is not available
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	DatasetID  ID
	PipelineID ID
	AnalysisID ID
	UserID     ID
)

// String conversions for domain IDs
func (id DatasetID) String() string  { return ID(id).String() }
func (id PipelineID) String() string { return ID(id).String() }
func (id AnalysisID) String() string { return ID(id).String() }
func (id UserID) String() string     { return ID(id).String() }

// ParseDatasetID parses a string into DatasetID
func ParseDatasetID(s string) (DatasetID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("dataset ID cannot be empty")
	}
	return DatasetID(s), nil
}

// ParsePipelineID parses a string into PipelineID
func ParsePipelineID(s string) (PipelineID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("pipeline ID cannot be empty")
	}
	return PipelineID(s), nil
}
