package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sdejongh/dirmirror/pkg/models"
)

// TestHelper builds host/dest trees and runs the command tree against them
type TestHelper struct {
	t       *testing.T
	tempDir string
	hostDir string
	destDir string
}

func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	tempDir := t.TempDir()
	t.Setenv("DIRMIRROR_CONFIG", filepath.Join(tempDir, "missing.yaml"))

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

func (h *TestHelper) Write(root, name, content string) {
	h.t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		h.t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		h.t.Fatalf("failed to write file: %v", err)
	}
}

// Execute runs the root command and returns stdout, stderr and the error
func (h *TestHelper) Execute(args ...string) (string, string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

func TestSyncCommand(t *testing.T) {
	t.Run("mirrors and reports", func(t *testing.T) {
		h := NewTestHelper(t)
		h.Write(h.hostDir, "a.txt", "hello")
		h.Write(h.hostDir, "sub/b.txt", "world")
		h.Write(h.destDir, "stale.txt", "old")

		stdout, stderr, err := h.Execute("sync", "-H", h.hostDir, "-D", h.destDir)
		if err != nil {
			t.Fatalf("sync failed: %v\n%s", err, stderr)
		}

		data, err := os.ReadFile(filepath.Join(h.destDir, "sub", "b.txt"))
		if err != nil || string(data) != "world" {
			t.Errorf("sub/b.txt = %q, %v", data, err)
		}
		if _, err := os.Stat(filepath.Join(h.destDir, "stale.txt")); !os.IsNotExist(err) {
			t.Error("stale.txt should have been removed")
		}
		if !strings.Contains(stdout, "Status: success") {
			t.Errorf("stdout missing status:\n%s", stdout)
		}
		if !strings.Contains(stderr, " - Differences found, synchronization required") {
			t.Errorf("stderr missing activity line:\n%s", stderr)
		}
	})

	t.Run("second run does nothing", func(t *testing.T) {
		h := NewTestHelper(t)
		h.Write(h.hostDir, "a.txt", "hello")

		if _, _, err := h.Execute("sync", "-H", h.hostDir, "-D", h.destDir); err != nil {
			t.Fatal(err)
		}
		stdout, stderr, err := h.Execute("sync", "-H", h.hostDir, "-D", h.destDir)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stderr, " - No action required") {
			t.Errorf("stderr = %s", stderr)
		}
		if !strings.Contains(stdout, "Status: no_action") {
			t.Errorf("stdout = %s", stdout)
		}
	})

	t.Run("json output", func(t *testing.T) {
		h := NewTestHelper(t)
		h.Write(h.hostDir, "a.txt", "hello")

		stdout, _, err := h.Execute("sync", "-H", h.hostDir, "-D", h.destDir, "-o", "json", "-q")
		if err != nil {
			t.Fatal(err)
		}
		var report struct {
			Status  string `json:"status"`
			Entries []struct {
				Path     string `json:"path"`
				Checksum string `json:"xxhash"`
			} `json:"entries"`
		}
		if err := json.Unmarshal([]byte(stdout), &report); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		if report.Status != "success" || len(report.Entries) != 1 {
			t.Fatalf("report = %+v", report)
		}
		// xxhash64("hello")
		if report.Entries[0].Checksum != "26c7827d889f6da3" {
			t.Errorf("checksum = %s", report.Entries[0].Checksum)
		}
	})

	t.Run("missing host", func(t *testing.T) {
		h := NewTestHelper(t)
		_, _, err := h.Execute("sync", "-H", filepath.Join(h.tempDir, "nope"), "-D", h.destDir)
		var nf *models.NotFoundError
		if !errors.As(err, &nf) || nf.Role != models.RoleHost {
			t.Fatalf("err = %v, want host NotFoundError", err)
		}
		if entries, _ := os.ReadDir(h.destDir); len(entries) != 0 {
			t.Error("destination must not be touched")
		}
	})

	t.Run("missing dest without create", func(t *testing.T) {
		h := NewTestHelper(t)
		dest := filepath.Join(h.tempDir, "fresh")
		_, _, err := h.Execute("sync", "-H", h.hostDir, "-D", dest, "--create-dest=false")
		var nf *models.NotFoundError
		if !errors.As(err, &nf) || nf.Role != models.RoleDest {
			t.Fatalf("err = %v, want destination NotFoundError", err)
		}
	})

	t.Run("missing dest is created", func(t *testing.T) {
		h := NewTestHelper(t)
		h.Write(h.hostDir, "a.txt", "hello")
		dest := filepath.Join(h.tempDir, "fresh", "nested")
		if _, _, err := h.Execute("sync", "-H", h.hostDir, "-D", dest); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filepath.Join(dest, "a.txt")); err != nil {
			t.Errorf("a.txt not mirrored: %v", err)
		}
	})

	t.Run("nested paths rejected", func(t *testing.T) {
		h := NewTestHelper(t)
		_, _, err := h.Execute("sync", "-H", h.hostDir, "-D", filepath.Join(h.hostDir, "inner"))
		if err == nil || !strings.Contains(err.Error(), "inside host") {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("symlinked dest inside host rejected", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("symlinks need privileges on windows")
		}
		h := NewTestHelper(t)
		h.Write(h.hostDir, "a.txt", "hello")
		if err := os.Mkdir(filepath.Join(h.hostDir, "inner"), 0755); err != nil {
			t.Fatal(err)
		}
		link := filepath.Join(h.tempDir, "link")
		if err := os.Symlink(filepath.Join(h.hostDir, "inner"), link); err != nil {
			t.Fatal(err)
		}

		if _, _, err := resolvePaths(h.hostDir, link); err == nil {
			t.Error("resolvePaths accepted a destination linking into the host")
		}

		_, _, err := h.Execute("-q", "sync", "-H", h.hostDir, "-D", link)
		if err == nil || !strings.Contains(err.Error(), "inside host") {
			t.Fatalf("err = %v", err)
		}
		entries, err := os.ReadDir(filepath.Join(h.hostDir, "inner"))
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("host tree was modified: %v", entries)
		}
	})

	t.Run("activity and diagnostic logs", func(t *testing.T) {
		h := NewTestHelper(t)
		h.Write(h.hostDir, "a.txt", "hello")
		h.Write(h.destDir, "a.txt", "jello")
		activity := filepath.Join(h.tempDir, "activity.log")
		diag := filepath.Join(h.tempDir, "dirmirror.log")
		report := filepath.Join(h.tempDir, "diffs.txt")

		_, _, err := h.Execute("sync", "-H", h.hostDir, "-D", h.destDir, "-q",
			"--activity-log", activity, "--log-file", diag, "--log-level", "debug",
			"--diff-report", report)
		if err != nil {
			t.Fatal(err)
		}

		lines, err := os.ReadFile(activity)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(lines), " - Synchronization success: 0 copied, 1 updated") {
			t.Errorf("activity log:\n%s", lines)
		}
		if info, err := os.Stat(diag); err != nil || info.Size() == 0 {
			t.Errorf("diagnostic log missing: %v", err)
		}
		diffs, err := os.ReadFile(report)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(diffs), "Content Differences (1)") {
			t.Errorf("report:\n%s", diffs)
		}
	})
}

func TestCompareCommand(t *testing.T) {
	h := NewTestHelper(t)
	h.Write(h.hostDir, "a.txt", "hello")
	h.Write(h.destDir, "b.txt", "other")

	stdout, _, err := h.Execute("compare", "-H", h.hostDir, "-D", h.destDir)
	if code := exitCode(err); code != 1 {
		t.Fatalf("exit code = %d (%v), want 1", code, err)
	}
	for _, want := range []string{"Only on Host (1)", "Only on Destination (1)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
	// compare never modifies anything
	if _, err := os.Stat(filepath.Join(h.destDir, "a.txt")); !os.IsNotExist(err) {
		t.Error("compare must not copy files")
	}

	h2 := NewTestHelper(t)
	h2.Write(h2.hostDir, "a.txt", "same")
	h2.Write(h2.destDir, "a.txt", "same")
	if _, _, err := h2.Execute("compare", "-H", h2.hostDir, "-D", h2.destDir); err != nil {
		t.Errorf("identical trees: %v", err)
	}
}

func TestRootCommand(t *testing.T) {
	t.Run("compute only", func(t *testing.T) {
		h := NewTestHelper(t)
		h.Write(h.hostDir, "a.txt", "hello")

		_, stderr, err := h.Execute("--hostdir", h.hostDir, "--destdir", h.destDir)
		if code := exitCode(err); code != 1 {
			t.Fatalf("exit code = %d (%v), want 1", code, err)
		}
		if !strings.Contains(stderr, "Comparing "+h.hostDir+" with "+h.destDir) {
			t.Errorf("stderr = %s", stderr)
		}
		if _, err := os.Stat(filepath.Join(h.destDir, "a.txt")); !os.IsNotExist(err) {
			t.Error("compute must not copy files")
		}
	})

	t.Run("syncall", func(t *testing.T) {
		h := NewTestHelper(t)
		h.Write(h.hostDir, "a.txt", "hello")

		if _, _, err := h.Execute("--hostdir", h.hostDir, "--destdir", h.destDir, "--syncall"); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filepath.Join(h.destDir, "a.txt")); err != nil {
			t.Errorf("a.txt not mirrored: %v", err)
		}
	})

	t.Run("help without flags", func(t *testing.T) {
		h := NewTestHelper(t)
		stdout, _, err := h.Execute()
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stdout, "dirmirror") {
			t.Errorf("stdout = %s", stdout)
		}
	})
}

func TestConfigCommand(t *testing.T) {
	h := NewTestHelper(t)
	path := filepath.Join(h.tempDir, "conf", "config.yaml")

	if _, _, err := h.Execute("--config", path, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if _, _, err := h.Execute("--config", path, "config", "init"); err == nil {
		t.Error("expected error when config already exists")
	}

	stdout, _, err := h.Execute("--config", path, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "Buffer Size: 65536") {
		t.Errorf("stdout = %s", stdout)
	}
}

func TestVersionCommand(t *testing.T) {
	h := NewTestHelper(t)
	stdout, _, err := h.Execute("version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(stdout) != Version {
		t.Errorf("version = %q", stdout)
	}
}

func TestVersionJSON(t *testing.T) {
	h := NewTestHelper(t)
	stdout, _, err := h.Execute("version", "-o", "json")
	if err != nil {
		t.Fatal(err)
	}
	var info BuildInfo
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if info.Version != Version || info.GoVersion == "" {
		t.Errorf("info = %+v", info)
	}
}
