package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// TimestampLayout is the prefix layout of every activity line
const TimestampLayout = "2006-01-02 15:04:05"

// Sink is the append-only activity stream shown to the user.
// Implementations must be safe for concurrent use.
type Sink interface {
	Append(msg string)
}

// FormatLine renders one activity line without a trailing newline
func FormatLine(t time.Time, msg string) string {
	return t.Format(TimestampLayout) + " - " + msg
}

// splitLines breaks msg into the lines to prefix. Only the empty message
// is dropped; a single trailing line break is ignored.
func splitLines(msg string) []string {
	if msg == "" {
		return nil
	}
	msg = strings.TrimSuffix(strings.TrimSuffix(msg, "\n"), "\r")
	lines := strings.Split(msg, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// LineSink writes timestamped lines to an io.Writer
type LineSink struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewLineSink creates a sink writing to w using the local clock
func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: w, now: time.Now}
}

// Append writes msg, one timestamped line per line of text.
// Empty messages are dropped.
func (s *LineSink) Append(msg string) {
	lines := splitLines(msg)
	if len(lines) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, line := range lines {
		fmt.Fprintln(s.w, FormatLine(now, line))
	}
}

// MemorySink keeps lines in memory
type MemorySink struct {
	mu    sync.Mutex
	lines []string
	now   func() time.Time
}

// NewMemorySink creates an empty in-memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{now: time.Now}
}

// Append stores msg, one timestamped line per line of text.
// Empty messages are dropped.
func (s *MemorySink) Append(msg string) {
	lines := splitLines(msg)
	if len(lines) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, line := range lines {
		s.lines = append(s.lines, FormatLine(now, line))
	}
}

// Lines returns a copy of the stored lines
func (s *MemorySink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// MultiSink fans every message out to several sinks
type MultiSink []Sink

// Append forwards msg to every sink
func (m MultiSink) Append(msg string) {
	for _, s := range m {
		s.Append(msg)
	}
}

// NullSink discards everything
type NullSink struct{}

// Append does nothing
func (NullSink) Append(string) {}
