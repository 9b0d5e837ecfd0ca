package logging

import (
	"context"
	"fmt"
)

// Level represents log severity
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Logger defines the interface for structured diagnostics.
// Implementations include the rotating file logger and the null logger.
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, msg string, fields Fields)

	// Info logs an info message
	Info(ctx context.Context, msg string, fields Fields)

	// Warn logs a warning message
	Warn(ctx context.Context, msg string, fields Fields)

	// Error logs an error message
	Error(ctx context.Context, msg string, err error, fields Fields)

	// WithFields returns a logger with additional fields
	WithFields(fields Fields) Logger

	// Close flushes and closes the logger
	Close() error
}

// Options selects and configures a Logger. An empty Path disables logging.
type Options struct {
	Path       string
	Format     string // "text" or "json"
	Level      string // "debug", "info", "warn", "error"
	MaxSize    int64
	MaxBackups int
	Compress   string // "none", "gzip" or "zstd"
}

// New builds the logger described by opts
func New(opts Options) (Logger, error) {
	if opts.Path == "" {
		return NewNullLogger(), nil
	}

	format := FormatText
	if opts.Format == "json" {
		format = FormatJSON
	}

	compression, err := ParseCompression(opts.Compress)
	if err != nil {
		return nil, fmt.Errorf("invalid log compression: %w", err)
	}

	return NewFileLogger(FileLoggerConfig{
		Path:        opts.Path,
		Format:      format,
		Level:       ParseLevel(opts.Level),
		MaxSize:     opts.MaxSize,
		MaxBackups:  opts.MaxBackups,
		Compression: compression,
	})
}

// NullLogger discards everything. It is what New returns when no log file
// is configured.
type NullLogger struct{}

var _ Logger = (*NullLogger)(nil)

// NewNullLogger creates a new null logger
func NewNullLogger() *NullLogger { return &NullLogger{} }

func (*NullLogger) Debug(context.Context, string, Fields)        {}
func (*NullLogger) Info(context.Context, string, Fields)         {}
func (*NullLogger) Warn(context.Context, string, Fields)         {}
func (*NullLogger) Error(context.Context, string, error, Fields) {}
func (l *NullLogger) WithFields(Fields) Logger                   { return l }
func (*NullLogger) Close() error                                 { return nil }
