package sync

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/sdejongh/dirmirror/pkg/models"
)

// TaskKind selects what a Runner executes
type TaskKind string

const (
	// TaskCompute runs ComputeDifference
	TaskCompute TaskKind = "compute"
	// TaskSync runs Synchronize unconditionally
	TaskSync TaskKind = "sync"
	// TaskRun runs ComputeDifference then Synchronize when needed
	TaskRun TaskKind = "run"
)

// Task describes one engine invocation
type Task struct {
	Kind     TaskKind
	HostPath string
	DestPath string
}

func (t Task) key() string {
	return string(t.Kind) + "\x00" + t.HostPath + "\x00" + t.DestPath
}

// Result is delivered exactly once per task
type Result struct {
	Task    Task
	Differs bool
	Outcome *models.MirrorOutcome
	Err     error
}

// Runner executes engine tasks off the caller's goroutine.
// Identical tasks submitted while one is in flight share its execution and
// its result; the shared Outcome must be treated as read-only.
//
// A shared execution runs under the context of the caller that started it.
// Cancelling that context fails every caller waiting on the same flight with
// the context error; tasks submitted after the flight ends run afresh.
type Runner struct {
	engine *Engine
	group  singleflight.Group
}

// NewRunner creates a runner for engine
func NewRunner(engine *Engine) *Runner {
	return &Runner{engine: engine}
}

// Go starts task on a new goroutine. The returned channel yields exactly one
// Result and is then closed, whether the task succeeds, fails or panics.
func (r *Runner) Go(ctx context.Context, task Task) <-chan Result {
	done := make(chan Result, 1)
	go func() {
		defer close(done)
		done <- r.do(ctx, task)
	}()
	return done
}

// Do runs task and blocks until its result is available
func (r *Runner) Do(ctx context.Context, task Task) Result {
	return <-r.Go(ctx, task)
}

func (r *Runner) do(ctx context.Context, task Task) Result {
	res := Result{Task: task}

	v, err, _ := r.group.Do(task.key(), func() (interface{}, error) {
		return r.execute(ctx, task)
	})
	if shared, ok := v.(Result); ok {
		res.Differs = shared.Differs
		res.Outcome = shared.Outcome
	}
	res.Err = err
	return res
}

// execute converts a panic into an error so that singleflight never
// re-panics on a waiter's goroutine
func (r *Runner) execute(ctx context.Context, task Task) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s task panicked: %v", task.Kind, p)
		}
	}()

	switch task.Kind {
	case TaskCompute:
		res.Differs, err = r.engine.ComputeDifference(ctx, task.HostPath, task.DestPath)
	case TaskSync:
		res.Outcome, err = r.engine.Synchronize(ctx, task.HostPath, task.DestPath)
		res.Differs = res.Outcome != nil && res.Outcome.Changed()
	case TaskRun:
		res.Outcome, err = r.engine.Run(ctx, task.HostPath, task.DestPath)
		res.Differs = res.Outcome != nil && res.Outcome.Status != models.StatusNoAction
	default:
		err = fmt.Errorf("unknown task kind %q", task.Kind)
	}

	return res, err
}
