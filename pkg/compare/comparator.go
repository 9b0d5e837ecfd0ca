package compare

import (
	"context"

	"github.com/sdejongh/dirmirror/pkg/storage"
)

// Result represents the outcome of comparing two files
type Result string

const (
	// Same indicates files are identical
	Same Result = "same"
	// Different indicates files differ
	Different Result = "different"
)

// Comparison holds the result of comparing two files
type Comparison struct {
	Path   string
	Result Result
	Reason string
}

// Comparator defines the interface for file content comparison
type Comparator interface {
	// Compare compares the file at path on both backends
	Compare(ctx context.Context, host, dest storage.Backend, path string) (*Comparison, error)

	// Name returns the name of the comparison method
	Name() string
}
