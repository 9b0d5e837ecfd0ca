package output

import (
	"io"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/sdejongh/dirmirror/pkg/models"
)

// progressTemplate shows a spinner, the number of actions so far, bytes
// written and the entry being processed
const progressTemplate = `{{ cycle . "|" "/" "-" "\\" }} {{ counters . }} actions, {{ string . "bytes" }} written {{ string . "path" }} {{ etime . }}`

// ProgressFormatter draws a live counter while the mirror runs and prints
// the human summary when it completes
type ProgressFormatter struct {
	writer io.Writer
	bar    *pb.ProgressBar
	bytes  int64
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{}
}

// Start initializes the bar
func (f *ProgressFormatter) Start(writer io.Writer, hostPath, destPath string) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer

	f.bar = pb.ProgressBarTemplate(progressTemplate).New(0)
	f.bar.SetWriter(writer)
	f.bar.SetRefreshRate(100 * time.Millisecond)
	f.bar.Set("bytes", formatBytes(0))
	f.bar.Set("path", hostPath)
	f.bar.Start()
	return nil
}

// Progress advances the counter
func (f *ProgressFormatter) Progress(entry models.EntryOperation) error {
	if f.bar == nil {
		return nil
	}
	f.bytes += entry.Size
	f.bar.Set("bytes", formatBytes(f.bytes))
	f.bar.Set("path", entry.Path)
	f.bar.Increment()
	return nil
}

// Complete stops the bar and prints the summary
func (f *ProgressFormatter) Complete(outcome *models.MirrorOutcome) error {
	f.finish()
	if f.writer == nil {
		f.writer = io.Discard
	}
	writeSummary(f.writer, outcome)
	return nil
}

// Error stops the bar and reports err
func (f *ProgressFormatter) Error(err error) error {
	f.finish()
	if f.writer != nil {
		io.WriteString(f.writer, "Error: "+err.Error()+"\n")
	}
	return nil
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}

func (f *ProgressFormatter) finish() {
	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
}
