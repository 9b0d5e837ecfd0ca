package output

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/sdejongh/dirmirror/pkg/models"
)

// Formatter renders a mirror run for the user.
// Implementations include human-readable, progress bar and JSON formatters.
type Formatter interface {
	// Start initializes the formatter for a new mirror run
	Start(writer io.Writer, hostPath, destPath string) error

	// Progress reports one action performed by the mirror
	Progress(entry models.EntryOperation) error

	// Complete finalizes output and displays the summary
	Complete(outcome *models.MirrorOutcome) error

	// Error reports a fatal error
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// New selects a formatter. Progress bars are only drawn on terminals.
func New(format string, progress, verbose bool, w io.Writer) Formatter {
	switch {
	case format == "json":
		return NewJSONFormatter()
	case progress && IsTerminal(w):
		return NewProgressFormatter()
	default:
		return NewHumanFormatter(verbose)
	}
}
