//go:build !windows

package platform

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// CheckWritable verifies the current user may create entries under path.
// When path does not exist yet, its nearest existing ancestor is checked
// since that is where it will be created.
func CheckWritable(path string) error {
	target := filepath.Clean(path)
	for {
		info, err := os.Stat(target)
		if err == nil {
			if !info.IsDir() {
				return &PathError{Path: target, Message: "not a directory"}
			}
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return &PathError{Path: target, Message: err.Error()}
		}
		parent := filepath.Dir(target)
		if parent == target {
			return &PathError{Path: path, Message: "no existing ancestor"}
		}
		target = parent
	}

	if err := unix.Access(target, unix.W_OK|unix.X_OK); err != nil {
		return &PathError{Path: target, Message: "not writable: " + err.Error()}
	}
	return nil
}
