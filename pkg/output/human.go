package output

import (
	"fmt"
	"io"
	"time"

	"github.com/sdejongh/dirmirror/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer  io.Writer
	verbose bool
}

// NewHumanFormatter creates a new human-readable formatter.
// In verbose mode every action is printed as it happens.
func NewHumanFormatter(verbose bool) *HumanFormatter {
	return &HumanFormatter{verbose: verbose}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, hostPath, destPath string) error {
	f.writer = writer
	if f.writer == nil {
		f.writer = io.Discard
	}
	fmt.Fprintf(f.writer, "Mirroring %s -> %s\n", hostPath, destPath)
	return nil
}

// Progress prints the action in verbose mode
func (f *HumanFormatter) Progress(entry models.EntryOperation) error {
	if !f.verbose || f.writer == nil {
		return nil
	}

	switch entry.Action {
	case models.ActionCopy, models.ActionUpdate:
		fmt.Fprintf(f.writer, "  %-7s %s (%s)\n", entry.Action, entry.Path, formatBytes(entry.Size))
	default:
		fmt.Fprintf(f.writer, "  %-7s %s\n", entry.Action, entry.Path)
	}
	return nil
}

// Complete displays the summary
func (f *HumanFormatter) Complete(outcome *models.MirrorOutcome) error {
	if f.writer == nil {
		f.writer = io.Discard
	}
	writeSummary(f.writer, outcome)
	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

func writeSummary(w io.Writer, outcome *models.MirrorOutcome) {
	s := outcome.Stats

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Mirror completed in %s\n", outcome.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Directories scanned: %d\n", s.DirsScanned)
	fmt.Fprintf(w, "  Files copied:        %d\n", s.FilesCopied)
	fmt.Fprintf(w, "  Files updated:       %d\n", s.FilesUpdated)
	fmt.Fprintf(w, "  Files unchanged:     %d\n", s.FilesUnchanged)
	fmt.Fprintf(w, "  Dirs created:        %d\n", s.DirsCreated)
	fmt.Fprintf(w, "  Links created:       %d\n", s.LinksCreated)
	fmt.Fprintf(w, "  Entries removed:     %d\n", s.EntriesRemoved)
	fmt.Fprintf(w, "  Entries errored:     %d\n", s.EntriesErrored)
	fmt.Fprintf(w, "  Data transferred:    %s\n", formatBytes(s.BytesTransferred))

	if outcome.Duration.Seconds() > 0 && s.BytesTransferred > 0 {
		avgSpeed := float64(s.BytesTransferred) / outcome.Duration.Seconds()
		fmt.Fprintf(w, "  Average speed:       %s/s\n", formatBytes(int64(avgSpeed)))
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Status: %s\n", outcome.Status)

	if len(outcome.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, e := range outcome.Errors {
			fmt.Fprintf(w, "  %s: %s\n", e.Path, e.Error)
		}
	}
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
