package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sdejongh/dirmirror/pkg/models"
)

// Local is a filesystem-based storage backend
type Local struct {
	rootPath string
}

// NewLocal creates a new local filesystem backend rooted at an existing
// directory. A missing root, or a root that is not a directory, yields a
// *models.NotFoundError carrying the given role.
func NewLocal(rootPath string, role models.Role) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.NotFoundError{Path: rootPath, Role: role, Err: err}
		}
		return nil, &models.AccessError{Path: rootPath, Op: "stat", Err: err}
	}

	if !info.IsDir() {
		return nil, &models.NotFoundError{Path: rootPath, Role: role, Err: errors.New("not a directory")}
	}

	return &Local{rootPath: absPath}, nil
}

// Root returns the absolute root path
func (l *Local) Root() string {
	return l.rootPath
}

func (l *Local) full(path string) string {
	return filepath.Join(l.rootPath, filepath.FromSlash(path))
}

// ReadDir lists one directory level. Entries whose metadata cannot be read
// are still returned, typed from the directory entry alone.
func (l *Local) ReadDir(ctx context.Context, path string) ([]FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	dirEntries, err := os.ReadDir(l.full(path))
	if err != nil {
		return nil, fmt.Errorf("failed to list directory: %w", err)
	}

	entries := make([]FileInfo, 0, len(dirEntries))
	for _, d := range dirEntries {
		fi := FileInfo{
			Name:         d.Name(),
			RelativePath: joinRel(path, d.Name()),
			Kind:         models.KindOf(d.Type()),
		}
		if info, err := d.Info(); err == nil {
			fi.Size = info.Size()
			fi.ModTime = info.ModTime()
			fi.Kind = models.KindOf(info.Mode())
			fi.Permissions = uint32(info.Mode().Perm())
		}
		entries = append(entries, fi)
	}

	return entries, nil
}

// Lstat returns entry metadata without following symlinks
func (l *Local) Lstat(ctx context.Context, path string) (*FileInfo, error) {
	info, err := os.Lstat(l.full(path))
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &FileInfo{
		Name:         info.Name(),
		RelativePath: path,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		Kind:         models.KindOf(info.Mode()),
		Permissions:  uint32(info.Mode().Perm()),
	}, nil
}

// Read opens a file for reading
func (l *Local) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(l.full(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Write replaces a file atomically: content goes to a temporary file in the
// target directory which is then renamed over the target.
func (l *Local) Write(ctx context.Context, path string, reader io.Reader, metadata *FileInfo) (int64, error) {
	fullPath := l.full(path)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".dirmirror-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, reader)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return written, fmt.Errorf("failed to write file: %w", err)
	}

	if metadata != nil {
		if metadata.Permissions != 0 {
			if err := os.Chmod(tmpPath, os.FileMode(metadata.Permissions)); err != nil {
				os.Remove(tmpPath)
				return written, fmt.Errorf("failed to set permissions: %w", err)
			}
		}
		if !metadata.ModTime.IsZero() {
			if err := os.Chtimes(tmpPath, metadata.ModTime, metadata.ModTime); err != nil {
				os.Remove(tmpPath)
				return written, fmt.Errorf("failed to set modification time: %w", err)
			}
		}
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return written, fmt.Errorf("failed to replace file: %w", err)
	}

	return written, nil
}

// Readlink returns the target of a symbolic link
func (l *Local) Readlink(ctx context.Context, path string) (string, error) {
	target, err := os.Readlink(l.full(path))
	if err != nil {
		return "", fmt.Errorf("failed to read link: %w", err)
	}
	return target, nil
}

// Symlink creates a symbolic link at path pointing to target
func (l *Local) Symlink(ctx context.Context, target, path string) error {
	if err := os.Symlink(target, l.full(path)); err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// Delete removes a file or directory tree. The root itself is never removed.
func (l *Local) Delete(ctx context.Context, path string) error {
	fullPath := l.full(path)
	if fullPath == l.rootPath {
		return fmt.Errorf("refusing to delete backend root %s", l.rootPath)
	}

	if err := os.RemoveAll(fullPath); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}

	return nil
}

// MkdirAll creates a directory and all necessary parents
func (l *Local) MkdirAll(ctx context.Context, path string) error {
	if err := os.MkdirAll(l.full(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}

func joinRel(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
