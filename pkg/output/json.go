package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/dirmirror/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting.
// Nothing is written until Complete, so stdout stays parseable.
type JSONFormatter struct {
	writer   io.Writer
	hostPath string
	destPath string
	errMsg   string
}

// JSONReportData represents the final report document
type JSONReportData struct {
	OperationID string          `json:"operation_id,omitempty"`
	HostPath    string          `json:"host_path"`
	DestPath    string          `json:"dest_path"`
	Status      string          `json:"status"`
	ExitCode    int             `json:"exit_code"`
	Duration    string          `json:"duration"`
	DurationMs  int64           `json:"duration_ms"`
	Stats       JSONStatsData   `json:"stats"`
	Entries     []JSONEntryData `json:"entries,omitempty"`
	Errors      []JSONErrorData `json:"errors,omitempty"`
	Fatal       string          `json:"fatal,omitempty"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	DirsScanned      int    `json:"dirs_scanned"`
	FilesCopied      int    `json:"files_copied"`
	FilesUpdated     int    `json:"files_updated"`
	FilesUnchanged   int    `json:"files_unchanged"`
	DirsCreated      int    `json:"dirs_created"`
	LinksCreated     int    `json:"links_created"`
	EntriesRemoved   int    `json:"entries_removed"`
	EntriesErrored   int    `json:"entries_errored"`
	BytesTransferred int64  `json:"bytes_transferred"`
	AverageSpeed     int64  `json:"average_speed_bytes_per_sec,omitempty"`
	AverageSpeedStr  string `json:"average_speed,omitempty"`
}

// JSONEntryData represents one mirror action
type JSONEntryData struct {
	Path     string `json:"path"`
	Action   string `json:"action"`
	Kind     string `json:"kind"`
	Size     int64  `json:"size,omitempty"`
	Checksum string `json:"xxhash,omitempty"`
}

// JSONErrorData represents an error entry
type JSONErrorData struct {
	Path      string `json:"path"`
	Operation string `json:"operation"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, hostPath, destPath string) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.hostPath = hostPath
	f.destPath = destPath
	return nil
}

// Progress is a no-op: entries are taken from the outcome
func (f *JSONFormatter) Progress(entry models.EntryOperation) error {
	return nil
}

// Complete writes the report document
func (f *JSONFormatter) Complete(outcome *models.MirrorOutcome) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildReport(outcome, f.errMsg))
}

// Error records a fatal error for the final report
func (f *JSONFormatter) Error(err error) error {
	f.errMsg = err.Error()
	return nil
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

func buildReport(outcome *models.MirrorOutcome, fatal string) JSONReportData {
	s := outcome.Stats

	var avgSpeed int64
	var avgSpeedStr string
	if outcome.Duration.Seconds() > 0 && s.BytesTransferred > 0 {
		avgSpeed = int64(float64(s.BytesTransferred) / outcome.Duration.Seconds())
		avgSpeedStr = formatBytes(avgSpeed) + "/s"
	}

	entries := make([]JSONEntryData, 0, len(outcome.Entries))
	for _, e := range outcome.Entries {
		entries = append(entries, JSONEntryData{
			Path:     e.Path,
			Action:   string(e.Action),
			Kind:     string(e.Kind),
			Size:     e.Size,
			Checksum: e.Checksum,
		})
	}

	var errs []JSONErrorData
	for _, e := range outcome.Errors {
		errs = append(errs, JSONErrorData{
			Path:      e.Path,
			Operation: string(e.Operation),
			Error:     e.Error,
			Timestamp: e.Timestamp.Format(time.RFC3339),
		})
	}

	return JSONReportData{
		OperationID: outcome.OperationID,
		HostPath:    outcome.HostPath,
		DestPath:    outcome.DestPath,
		Status:      string(outcome.Status),
		ExitCode:    outcome.Status.ExitCode(),
		Duration:    outcome.Duration.Round(time.Millisecond).String(),
		DurationMs:  outcome.Duration.Milliseconds(),
		Stats: JSONStatsData{
			DirsScanned:      s.DirsScanned,
			FilesCopied:      s.FilesCopied,
			FilesUpdated:     s.FilesUpdated,
			FilesUnchanged:   s.FilesUnchanged,
			DirsCreated:      s.DirsCreated,
			LinksCreated:     s.LinksCreated,
			EntriesRemoved:   s.EntriesRemoved,
			EntriesErrored:   s.EntriesErrored,
			BytesTransferred: s.BytesTransferred,
			AverageSpeed:     avgSpeed,
			AverageSpeedStr:  avgSpeedStr,
		},
		Entries: entries,
		Errors:  errs,
		Fatal:   fatal,
	}
}
