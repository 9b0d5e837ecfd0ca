package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/sdejongh/dirmirror/pkg/compare"
	"github.com/sdejongh/dirmirror/pkg/logging"
	"github.com/sdejongh/dirmirror/pkg/models"
)

// Engine is the invocation surface: it decides whether a destination needs
// mirroring and performs the mirror, narrating both to the activity sink.
// An Engine keeps no state between calls.
type Engine struct {
	comparator *compare.DirComparator
	mirror     *Mirror
	logger     logging.Logger
	sink       logging.Sink
}

// NewEngine creates a new engine. A nil logger or sink discards output.
func NewEngine(
	comparator *compare.DirComparator,
	mirror *Mirror,
	logger logging.Logger,
	sink logging.Sink,
) *Engine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if sink == nil {
		sink = logging.NullSink{}
	}
	return &Engine{
		comparator: comparator,
		mirror:     mirror,
		logger:     logger,
		sink:       sink,
	}
}

// ComputeDifference reports whether dest differs from host at any depth.
// A missing root is returned as *models.NotFoundError.
func (e *Engine) ComputeDifference(ctx context.Context, hostPath, destPath string) (bool, error) {
	return e.computeDifference(ctx, hostPath, destPath, false)
}

// computeDifference narrates one comparison. With missingDest set a missing
// destination root counts as a difference rather than an error.
func (e *Engine) computeDifference(ctx context.Context, hostPath, destPath string, missingDest bool) (bool, error) {
	e.sink.Append(fmt.Sprintf("Comparing %s with %s", hostPath, destPath))

	differs, err := e.comparator.RequiresSync(ctx, hostPath, destPath)
	var nf *models.NotFoundError
	if err != nil && missingDest && errors.As(err, &nf) && nf.Role == models.RoleDest {
		e.logger.Info(ctx, "destination missing, it will be created", logging.Fields{"dest": destPath})
		differs, err = true, nil
	}
	if err != nil {
		e.sink.Append(fmt.Sprintf("Error: %v", err))
		e.logger.Error(ctx, "comparison failed", err, logging.Fields{"host": hostPath, "dest": destPath})
		return false, err
	}

	if differs {
		e.sink.Append("Differences found, synchronization required")
	} else {
		e.sink.Append("No action required")
	}
	e.logger.Info(ctx, "comparison complete", logging.Fields{"host": hostPath, "dest": destPath, "differs": differs})

	return differs, nil
}

// Differences lists every difference between host and dest without
// stopping at the first one
func (e *Engine) Differences(ctx context.Context, hostPath, destPath string) ([]models.Difference, error) {
	e.sink.Append(fmt.Sprintf("Comparing %s with %s", hostPath, destPath))

	diffs, err := e.comparator.Differences(ctx, hostPath, destPath)
	if err != nil {
		e.sink.Append(fmt.Sprintf("Error: %v", err))
		e.logger.Error(ctx, "comparison failed", err, logging.Fields{"host": hostPath, "dest": destPath})
		return nil, err
	}

	if len(diffs) == 0 {
		e.sink.Append("No action required")
	} else {
		e.sink.Append(fmt.Sprintf("%d differences found", len(diffs)))
	}
	e.logger.Info(ctx, "comparison complete", logging.Fields{"host": hostPath, "dest": destPath, "differences": len(diffs)})

	return diffs, nil
}

// Synchronize mirrors host onto dest. The outcome is returned even when a
// fatal error aborts the mirror.
func (e *Engine) Synchronize(ctx context.Context, hostPath, destPath string) (*models.MirrorOutcome, error) {
	e.sink.Append(fmt.Sprintf("Synchronizing %s to %s", hostPath, destPath))

	outcome, err := e.mirror.Sync(ctx, hostPath, destPath)
	if err != nil {
		e.sink.Append(fmt.Sprintf("Synchronization failed: %v", err))
		return outcome, err
	}

	for _, failure := range outcome.Errors {
		e.sink.Append(fmt.Sprintf("Failed to %s %s: %s", failure.Operation, failure.Path, failure.Error))
	}

	if outcome.Status == models.StatusNoAction {
		e.sink.Append("No action required")
		return outcome, nil
	}

	e.sink.Append(Summary(outcome))
	return outcome, nil
}

// Run compares the trees and mirrors only when they differ. When nothing
// differs the returned outcome has StatusNoAction and nothing is touched.
func (e *Engine) Run(ctx context.Context, hostPath, destPath string) (*models.MirrorOutcome, error) {
	// A missing destination is created by the mirror
	differs, err := e.computeDifference(ctx, hostPath, destPath, true)
	if err != nil {
		return nil, err
	}

	if !differs {
		outcome := models.NewMirrorOutcome(models.NewOperation(hostPath, destPath))
		outcome.Status = models.StatusNoAction
		outcome.Finish()
		return outcome, nil
	}

	return e.Synchronize(ctx, hostPath, destPath)
}

// Summary renders the one-line activity summary of an outcome
func Summary(outcome *models.MirrorOutcome) string {
	s := outcome.Stats
	return fmt.Sprintf("Synchronization %s: %d copied, %d updated, %d removed, %d directories created, %d errors",
		outcome.Status, s.FilesCopied, s.FilesUpdated, s.EntriesRemoved, s.DirsCreated, s.EntriesErrored)
}
