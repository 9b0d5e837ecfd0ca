package models

import (
	"time"

	"github.com/google/uuid"
)

// Operation identifies one compute or mirror invocation
type Operation struct {
	ID        string
	HostPath  string
	DestPath  string
	CreatedAt time.Time
}

// NewOperation creates an operation with a fresh ID
func NewOperation(hostPath, destPath string) *Operation {
	return &Operation{
		ID:        uuid.New().String(),
		HostPath:  hostPath,
		DestPath:  destPath,
		CreatedAt: time.Now(),
	}
}

// Validate checks if the operation is usable
func (op *Operation) Validate() error {
	if op.HostPath == "" {
		return &ValidationError{Field: "HostPath", Message: "host path is required"}
	}
	if op.DestPath == "" {
		return &ValidationError{Field: "DestPath", Message: "destination path is required"}
	}
	return nil
}
