package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dirmirror/pkg/compare"
	"github.com/sdejongh/dirmirror/pkg/config"
	"github.com/sdejongh/dirmirror/pkg/logging"
	"github.com/sdejongh/dirmirror/pkg/models"
	"github.com/sdejongh/dirmirror/pkg/output"
	"github.com/sdejongh/dirmirror/pkg/sync"
)

// session bundles everything one command invocation needs: the engine and
// its runner, the diagnostic logger, the activity sink and the formatter
type session struct {
	cfg       *config.Config
	logger    logging.Logger
	formatter output.Formatter
	engine    *sync.Engine
	runner    *sync.Runner
	closers   []io.Closer
}

// newSession wires the engine from cfg. Activity lines go to stderr unless
// quiet, and are appended to the activity file when one is configured.
func newSession(cmd *cobra.Command, cfg *config.Config) (*session, error) {
	s := &session{cfg: cfg}

	logger := logging.Logger(logging.NewNullLogger())
	if cfg.Logging.Enabled {
		var err error
		logger, err = logging.New(logging.Options{
			Path:       cfg.Logging.File,
			Format:     cfg.Logging.Format,
			Level:      cfg.Logging.Level,
			MaxSize:    cfg.Logging.MaxSize,
			MaxBackups: cfg.Logging.MaxBackups,
			Compress:   cfg.Logging.Compress,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}
	s.logger = logger
	s.closers = append(s.closers, logger)

	var sinks logging.MultiSink
	if !cfg.Output.Quiet {
		sinks = append(sinks, logging.NewLineSink(cmd.ErrOrStderr()))
	}
	if cfg.Logging.ActivityFile != "" {
		file, err := os.OpenFile(cfg.Logging.ActivityFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to open activity log: %w", err)
		}
		s.closers = append(s.closers, file)
		sinks = append(sinks, logging.NewLineSink(file))
	}

	stdout := cmd.OutOrStdout()
	s.formatter = output.New(cfg.Output.Format, cfg.Output.Progress, globalFlags.Verbose, stdout)
	if cfg.Output.Quiet && cfg.Output.Format != "json" {
		s.formatter = nil
	}

	mirror := sync.NewMirror(sync.MirrorOptions{
		BufferSize:    cfg.Performance.BufferSize,
		PreserveTimes: cfg.Mirror.PreserveTimes,
		Logger:        logger,
		OnEntry: func(entry models.EntryOperation) {
			if s.formatter != nil {
				s.formatter.Progress(entry)
			}
		},
	})

	s.engine = sync.NewEngine(compare.NewDirComparator(cfg.Performance.BufferSize), mirror, logger, sinks)
	s.runner = sync.NewRunner(s.engine)
	return s, nil
}

// Close releases the logger and the activity file
func (s *session) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
