package sync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdejongh/dirmirror/pkg/logging"
	"github.com/sdejongh/dirmirror/pkg/models"
)

func hasLine(lines []string, suffix string) bool {
	for _, line := range lines {
		if strings.HasSuffix(line, " - "+suffix) {
			return true
		}
	}
	return false
}

func TestEngineScenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("NewFileIsCopied", func(t *testing.T) {
		h := NewTestHelper(t)
		h.WriteHost("a.txt", "hi")
		engine := newTestEngine(nil)

		differs, err := engine.ComputeDifference(ctx, h.hostDir, h.destDir)
		if err != nil || !differs {
			t.Fatalf("ComputeDifference() = %v, %v; want true", differs, err)
		}
		if _, err := engine.Synchronize(ctx, h.hostDir, h.destDir); err != nil {
			t.Fatalf("Synchronize() error = %v", err)
		}
		h.AssertMirrored()
	})

	t.Run("IdenticalTreesNeedNoAction", func(t *testing.T) {
		h := NewTestHelper(t)
		h.WriteHost("a.txt", "hi")
		h.WriteDest("a.txt", "hi")
		sink := logging.NewMemorySink()
		engine := newTestEngine(sink)

		differs, err := engine.ComputeDifference(ctx, h.hostDir, h.destDir)
		if err != nil || differs {
			t.Fatalf("ComputeDifference() = %v, %v; want false", differs, err)
		}
		if !hasLine(sink.Lines(), "No action required") {
			t.Errorf("log = %v, want a 'No action required' line", sink.Lines())
		}

		outcome, err := engine.Synchronize(ctx, h.hostDir, h.destDir)
		if err != nil {
			t.Fatalf("Synchronize() error = %v", err)
		}
		if outcome.Changed() {
			t.Errorf("Synchronize() should be a no-op: %+v", outcome.Entries)
		}
	})

	t.Run("NestedMismatchIsUpdated", func(t *testing.T) {
		h := NewTestHelper(t)
		h.WriteHost("sub/b.txt", "x")
		h.WriteDest("sub/b.txt", "y")
		engine := newTestEngine(nil)

		outcome, err := engine.Run(ctx, h.hostDir, h.destDir)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if outcome.Stats.FilesUpdated != 1 {
			t.Errorf("FilesUpdated = %d, want 1", outcome.Stats.FilesUpdated)
		}
		data, _ := os.ReadFile(filepath.Join(h.destDir, "sub", "b.txt"))
		if string(data) != "x" {
			t.Errorf("dest/sub/b.txt = %q, want x", data)
		}
	})

	t.Run("StaleFileIsRemoved", func(t *testing.T) {
		h := NewTestHelper(t)
		h.WriteDest("stale.txt", "z")
		engine := newTestEngine(nil)

		if _, err := engine.Run(ctx, h.hostDir, h.destDir); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		entries, _ := os.ReadDir(h.destDir)
		if len(entries) != 0 {
			t.Errorf("destination should be empty, has %d entries", len(entries))
		}
	})

	t.Run("MissingHostIsNotFound", func(t *testing.T) {
		h := NewTestHelper(t)
		h.WriteDest("keep.txt", "k")
		sink := logging.NewMemorySink()
		engine := newTestEngine(sink)
		missing := filepath.Join(h.tempDir, "absent")

		_, err := engine.ComputeDifference(ctx, missing, h.destDir)
		var nf *models.NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("ComputeDifference() error = %v, want *NotFoundError", err)
		}

		outcome, err := engine.Run(ctx, missing, h.destDir)
		if !errors.As(err, &nf) || outcome != nil {
			t.Fatalf("Run() = %v, %v; want nil outcome and *NotFoundError", outcome, err)
		}
		if _, err := os.Stat(filepath.Join(h.destDir, "keep.txt")); err != nil {
			t.Error("destination must not be touched when the host is missing")
		}
		if hasLine(sink.Lines(), "Synchronizing "+missing+" to "+h.destDir) {
			t.Error("Synchronize should not run after a NotFoundError")
		}
	})
}

func TestEngineRun(t *testing.T) {
	ctx := context.Background()

	t.Run("NoActionOutcome", func(t *testing.T) {
		h := NewTestHelper(t)
		sink := logging.NewMemorySink()
		outcome, err := newTestEngine(sink).Run(ctx, h.hostDir, h.destDir)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if outcome.Status != models.StatusNoAction {
			t.Errorf("Status = %s, want no_action", outcome.Status)
		}
		for _, line := range sink.Lines() {
			if strings.Contains(line, "Synchronizing") {
				t.Error("identical trees must not be synchronized")
			}
		}
	})

	t.Run("MissingDestinationIsCreated", func(t *testing.T) {
		h := NewTestHelper(t)
		h.WriteHost("a.txt", "a")
		dest := filepath.Join(h.tempDir, "fresh")

		sink := logging.NewMemorySink()
		outcome, err := newTestEngine(sink).Run(ctx, h.hostDir, dest)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if outcome.Stats.FilesCopied != 1 {
			t.Errorf("FilesCopied = %d, want 1", outcome.Stats.FilesCopied)
		}

		// creating the destination is the normal path, not an error
		for _, line := range sink.Lines() {
			if strings.Contains(line, "Error") || strings.Contains(line, "not found") {
				t.Errorf("unexpected error line %q in %v", line, sink.Lines())
			}
		}
		for _, want := range []string{
			"Comparing " + h.hostDir + " with " + dest,
			"Synchronizing " + h.hostDir + " to " + dest,
			"Synchronization success: 1 copied, 0 updated, 0 removed, 1 directories created, 0 errors",
		} {
			if !hasLine(sink.Lines(), want) {
				t.Errorf("log = %v, want %q", sink.Lines(), want)
			}
		}
	})

	t.Run("SummaryLine", func(t *testing.T) {
		h := NewTestHelper(t)
		h.WriteHost("a.txt", "a")
		sink := logging.NewMemorySink()
		if _, err := newTestEngine(sink).Run(ctx, h.hostDir, h.destDir); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		want := "Synchronization success: 1 copied, 0 updated, 0 removed, 0 directories created, 0 errors"
		if !hasLine(sink.Lines(), want) {
			t.Errorf("log = %v, want %q", sink.Lines(), want)
		}
	})
}

func TestEngineDifferences(t *testing.T) {
	ctx := context.Background()
	h := NewTestHelper(t)
	h.WriteHost("new.txt", "n")
	h.WriteHost("sub/a.txt", "abc")
	h.WriteDest("sub/a.txt", "abd")
	h.WriteDest("stale.txt", "s")
	sink := logging.NewMemorySink()

	diffs, err := newTestEngine(sink).Differences(ctx, h.hostDir, h.destDir)
	if err != nil {
		t.Fatalf("Differences() error = %v", err)
	}
	if len(diffs) != 3 {
		t.Fatalf("Differences() = %v, want 3 entries", diffs)
	}
	if !hasLine(sink.Lines(), "3 differences found") {
		t.Errorf("log = %v", sink.Lines())
	}

	// nothing was modified
	if _, err := os.Stat(filepath.Join(h.destDir, "new.txt")); !os.IsNotExist(err) {
		t.Error("Differences must not touch the destination")
	}

	h2 := NewTestHelper(t)
	sink2 := logging.NewMemorySink()
	if diffs, err := newTestEngine(sink2).Differences(ctx, h2.hostDir, h2.destDir); err != nil || len(diffs) != 0 {
		t.Fatalf("Differences() on empty trees = %v, %v", diffs, err)
	}
	if !hasLine(sink2.Lines(), "No action required") {
		t.Errorf("log = %v", sink2.Lines())
	}
}
