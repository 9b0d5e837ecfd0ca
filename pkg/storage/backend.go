package storage

import (
	"context"
	"io"
	"time"

	"github.com/sdejongh/dirmirror/pkg/models"
)

// FileInfo represents metadata about a directory entry
type FileInfo struct {
	Name         string
	RelativePath string
	Size         int64
	ModTime      time.Time
	Kind         models.EntryKind
	Permissions  uint32
}

// IsDir reports whether the entry is a directory
func (fi FileInfo) IsDir() bool {
	return fi.Kind == models.KindDir
}

// Backend defines the storage operations used by the comparator and mirror.
// All paths are relative to the backend root, with "" meaning the root itself.
type Backend interface {
	// Root returns the absolute root path
	Root() string

	// ReadDir lists one directory level, sorted by name
	ReadDir(ctx context.Context, path string) ([]FileInfo, error)

	// Lstat returns entry metadata without following symlinks
	Lstat(ctx context.Context, path string) (*FileInfo, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or replaces a file with the given content.
	// If metadata is provided, attempts to preserve timestamps and permissions
	Write(ctx context.Context, path string, reader io.Reader, metadata *FileInfo) (int64, error)

	// Readlink returns the target of a symbolic link
	Readlink(ctx context.Context, path string) (string, error)

	// Symlink creates a symbolic link at path pointing to target
	Symlink(ctx context.Context, target, path string) error

	// Delete removes a file or directory tree
	Delete(ctx context.Context, path string) error

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error

	// Close releases any resources held by the backend
	Close() error
}
