package sync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sdejongh/dirmirror/pkg/compare"
	"github.com/sdejongh/dirmirror/pkg/logging"
)

// TestHelper provides host/dest fixtures for mirror tests
type TestHelper struct {
	t       *testing.T
	tempDir string
	hostDir string
	destDir string
}

// NewTestHelper creates empty host and destination trees
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	tempDir := t.TempDir()
	h := &TestHelper{
		t:       t,
		tempDir: tempDir,
		hostDir: filepath.Join(tempDir, "host"),
		destDir: filepath.Join(tempDir, "dest"),
	}
	for _, dir := range []string{h.hostDir, h.destDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
	}
	return h
}

// WriteHost creates a file under the host tree
func (h *TestHelper) WriteHost(name, content string) {
	h.t.Helper()
	h.write(h.hostDir, name, content)
}

// WriteDest creates a file under the destination tree
func (h *TestHelper) WriteDest(name, content string) {
	h.t.Helper()
	h.write(h.destDir, name, content)
}

// MkdirHost creates a directory under the host tree
func (h *TestHelper) MkdirHost(name string) {
	h.t.Helper()
	h.mkdir(h.hostDir, name)
}

// MkdirDest creates a directory under the destination tree
func (h *TestHelper) MkdirDest(name string) {
	h.t.Helper()
	h.mkdir(h.destDir, name)
}

func (h *TestHelper) write(root, name, content string) {
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		h.t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		h.t.Fatalf("failed to write file: %v", err)
	}
}

func (h *TestHelper) mkdir(root, name string) {
	if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(name)), 0755); err != nil {
		h.t.Fatalf("failed to create dir: %v", err)
	}
}

// Snapshot maps every path under root to its content, "<dir>" for
// directories and "-> target" for symlinks
func Snapshot(t *testing.T, root string) map[string]string {
	t.Helper()

	snap := make(map[string]string)
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, p)
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		switch {
		case d.Type()&os.ModeSymlink != 0:
			target, err := os.Readlink(p)
			if err != nil {
				return err
			}
			snap[rel] = "-> " + target
		case d.IsDir():
			snap[rel] = "<dir>"
		default:
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			snap[rel] = string(data)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("snapshot %s: %v", root, err)
	}
	return snap
}

// AssertMirrored fails unless dest holds exactly what host holds
func (h *TestHelper) AssertMirrored() {
	h.t.Helper()

	host := Snapshot(h.t, h.hostDir)
	dest := Snapshot(h.t, h.destDir)
	for path, content := range host {
		if got, ok := dest[path]; !ok {
			h.t.Errorf("%s missing from destination", path)
		} else if got != content {
			h.t.Errorf("%s = %q on destination, want %q", path, got, content)
		}
	}
	for path := range dest {
		if _, ok := host[path]; !ok {
			h.t.Errorf("%s should not exist on destination", path)
		}
	}
}

func newTestEngine(sink logging.Sink) *Engine {
	return NewEngine(
		compare.NewDirComparator(0),
		NewMirror(MirrorOptions{PreserveTimes: true}),
		nil,
		sink,
	)
}
