package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/sdejongh/dirmirror/internal/platform"
	"github.com/sdejongh/dirmirror/pkg/compare"
	"github.com/sdejongh/dirmirror/pkg/logging"
	"github.com/sdejongh/dirmirror/pkg/models"
	"github.com/sdejongh/dirmirror/pkg/storage"
)

// MirrorOptions configures a Mirror
type MirrorOptions struct {
	// BufferSize is the chunk size used when comparing file contents
	BufferSize int
	// PreserveTimes copies modification times and mode bits onto copies
	PreserveTimes bool
	// Logger receives one debug entry per action (nil = discard)
	Logger logging.Logger
	// OnEntry is called after every recorded action (nil = none)
	OnEntry func(models.EntryOperation)
}

// Mirror makes a destination tree an exact copy of a host tree.
// The host is never modified.
type Mirror struct {
	comparator    compare.Comparator
	preserveTimes bool
	logger        logging.Logger
	onEntry       func(models.EntryOperation)
}

// NewMirror creates a mirror
func NewMirror(opts MirrorOptions) *Mirror {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Mirror{
		comparator:    compare.NewBinaryComparator(opts.BufferSize),
		preserveTimes: opts.PreserveTimes,
		logger:        logger,
		onEntry:       opts.OnEntry,
	}
}

// Sync mirrors hostPath onto destPath.
//
// A missing host root, trees that overlap once symlinks are resolved, or a
// destination root that cannot be created or listed, is fatal: the returned outcome has StatusFailed and the error is
// returned. Failures on individual entries are recorded in the outcome and
// the walk continues. Running Sync twice in a row performs no actions the
// second time.
func (m *Mirror) Sync(ctx context.Context, hostPath, destPath string) (*models.MirrorOutcome, error) {
	op := models.NewOperation(hostPath, destPath)
	outcome := models.NewMirrorOutcome(op)
	logger := m.logger.WithFields(logging.Fields{"operation_id": op.ID})

	fail := func(err error) (*models.MirrorOutcome, error) {
		outcome.Status = models.StatusFailed
		outcome.Finish()
		logger.Error(ctx, "mirror aborted", err, nil)
		return outcome, err
	}

	if err := op.Validate(); err != nil {
		return fail(err)
	}

	host, err := storage.NewLocal(hostPath, models.RoleHost)
	if err != nil {
		return fail(err)
	}
	defer host.Close()

	// Writing into an overlapping tree would modify the host while walking it
	if err := platform.CheckPair(hostPath, destPath); err != nil {
		return fail(fmt.Errorf("refusing to mirror: %w", err))
	}

	created, err := ensureDestRoot(destPath)
	if err != nil {
		return fail(err)
	}
	if created {
		m.record(outcome, models.EntryOperation{Path: ".", Action: models.ActionMkdir, Kind: models.KindDir})
	}

	dest, err := storage.NewLocal(destPath, models.RoleDest)
	if err != nil {
		return fail(err)
	}
	defer dest.Close()

	w := &mirrorWalk{Mirror: m, host: host, dest: dest, outcome: outcome, logger: logger}
	if err := w.dir(ctx, ""); err != nil {
		return fail(err)
	}

	// A host root that vanished mid-walk leaves the destination incoherent
	if _, err := os.Stat(host.Root()); err != nil {
		return fail(&models.NotFoundError{Path: hostPath, Role: models.RoleHost, Err: err})
	}

	if !outcome.Changed() && len(outcome.Errors) == 0 {
		outcome.Status = models.StatusNoAction
	}
	outcome.Finish()

	logger.Info(ctx, "mirror complete", logging.Fields{
		"status":  string(outcome.Status),
		"copied":  outcome.Stats.FilesCopied,
		"updated": outcome.Stats.FilesUpdated,
		"removed": outcome.Stats.EntriesRemoved,
		"errors":  outcome.Stats.EntriesErrored,
	})

	return outcome, nil
}

// ensureDestRoot creates the destination root when it is absent
func ensureDestRoot(destPath string) (bool, error) {
	info, err := os.Stat(destPath)
	if err == nil {
		if !info.IsDir() {
			return false, &models.AccessError{Path: destPath, Op: "use destination", Err: errors.New("not a directory")}
		}
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, &models.AccessError{Path: destPath, Op: "access destination", Err: err}
	}
	if err := os.MkdirAll(destPath, 0755); err != nil {
		return false, &models.AccessError{Path: destPath, Op: "create destination", Err: err}
	}
	return true, nil
}

func (m *Mirror) record(outcome *models.MirrorOutcome, entry models.EntryOperation) {
	outcome.Record(entry)
	if m.onEntry != nil {
		m.onEntry(entry)
	}
}

// mirrorWalk carries the state of one Sync call
type mirrorWalk struct {
	*Mirror
	host    storage.Backend
	dest    storage.Backend
	outcome *models.MirrorOutcome
	logger  logging.Logger
}

// dir mirrors one directory level and recurses into host subdirectories.
// Only fatal conditions are returned: the host or destination root cannot be
// listed, or the context is done.
func (w *mirrorWalk) dir(ctx context.Context, path string) error {
	hostEntries, err := w.host.ReadDir(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path == "" {
			return &models.NotFoundError{Path: w.host.Root(), Role: models.RoleHost, Err: err}
		}
		// Without the host listing nothing under path can be pruned safely
		w.fail(ctx, path, models.ActionMkdir, err)
		return nil
	}

	destEntries, err := w.dest.ReadDir(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path == "" {
			return &models.AccessError{Path: w.dest.Root(), Op: "list destination", Err: err}
		}
		w.fail(ctx, path, models.ActionMkdir, err)
		return nil
	}
	w.outcome.Stats.DirsScanned++

	destByName := make(map[string]storage.FileInfo, len(destEntries))
	for _, d := range destEntries {
		destByName[d.Name] = d
	}

	for _, h := range hostEntries {
		if err := ctx.Err(); err != nil {
			return err
		}

		d, exists := destByName[h.Name]
		delete(destByName, h.Name)

		if exists && d.Kind != h.Kind {
			if !w.remove(ctx, d.RelativePath, d.Kind) {
				continue
			}
			exists = false
		}

		switch h.Kind {
		case models.KindDir:
			if !exists {
				if err := w.dest.MkdirAll(ctx, h.RelativePath); err != nil {
					w.fail(ctx, h.RelativePath, models.ActionMkdir, err)
					continue
				}
				w.record(w.outcome, models.EntryOperation{Path: h.RelativePath, Action: models.ActionMkdir, Kind: models.KindDir})
			}
			if err := w.dir(ctx, h.RelativePath); err != nil {
				return err
			}

		case models.KindFile:
			if err := w.file(ctx, h, exists); err != nil {
				return err
			}

		case models.KindSymlink:
			w.symlink(ctx, h, exists)

		default:
			w.fail(ctx, h.RelativePath, models.ActionCopy, fmt.Errorf("unsupported entry type"))
		}
	}

	stale := make([]string, 0, len(destByName))
	for name := range destByName {
		stale = append(stale, name)
	}
	sort.Strings(stale)
	for _, name := range stale {
		d := destByName[name]
		w.remove(ctx, d.RelativePath, d.Kind)
	}

	return nil
}

// file copies h when the destination copy is missing or differs
func (w *mirrorWalk) file(ctx context.Context, h storage.FileInfo, exists bool) error {
	action := models.ActionCopy
	if exists {
		cmp, err := w.comparator.Compare(ctx, w.host, w.dest, h.RelativePath)
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil && cmp.Result == compare.Same {
			w.outcome.Stats.FilesUnchanged++
			return nil
		}
		action = models.ActionUpdate
	}

	reader, err := w.host.Read(ctx, h.RelativePath)
	if err != nil {
		w.fail(ctx, h.RelativePath, action, err)
		return nil
	}
	defer reader.Close()

	hasher := xxhash.New()
	var meta *storage.FileInfo
	if w.preserveTimes {
		meta = &h
	}

	n, err := w.dest.Write(ctx, h.RelativePath, io.TeeReader(reader, hasher), meta)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.fail(ctx, h.RelativePath, action, err)
		return nil
	}

	w.record(w.outcome, models.EntryOperation{
		Path:     h.RelativePath,
		Action:   action,
		Kind:     models.KindFile,
		Size:     n,
		Checksum: fmt.Sprintf("%016x", hasher.Sum64()),
	})
	w.logger.Debug(ctx, "file mirrored", logging.Fields{"path": h.RelativePath, "action": string(action), "bytes": n})
	return nil
}

// symlink recreates h on the destination unless an identical link exists
func (w *mirrorWalk) symlink(ctx context.Context, h storage.FileInfo, exists bool) {
	target, err := w.host.Readlink(ctx, h.RelativePath)
	if err != nil {
		w.fail(ctx, h.RelativePath, models.ActionSymlink, err)
		return
	}

	if exists {
		current, err := w.dest.Readlink(ctx, h.RelativePath)
		if err == nil && current == target {
			w.outcome.Stats.FilesUnchanged++
			return
		}
		if !w.remove(ctx, h.RelativePath, models.KindSymlink) {
			return
		}
	}

	if err := w.dest.Symlink(ctx, target, h.RelativePath); err != nil {
		w.fail(ctx, h.RelativePath, models.ActionSymlink, err)
		return
	}
	w.record(w.outcome, models.EntryOperation{Path: h.RelativePath, Action: models.ActionSymlink, Kind: models.KindSymlink})
}

// remove deletes a destination entry and reports whether it succeeded
func (w *mirrorWalk) remove(ctx context.Context, path string, kind models.EntryKind) bool {
	if err := w.dest.Delete(ctx, path); err != nil {
		w.fail(ctx, path, models.ActionRemove, err)
		return false
	}
	w.record(w.outcome, models.EntryOperation{Path: path, Action: models.ActionRemove, Kind: kind})
	w.logger.Debug(ctx, "entry removed", logging.Fields{"path": path, "kind": string(kind)})
	return true
}

func (w *mirrorWalk) fail(ctx context.Context, path string, action models.Action, err error) {
	w.outcome.Fail(path, action, &models.AccessError{Path: path, Op: string(action), Err: err})
	w.logger.Warn(ctx, "entry failed", logging.Fields{"path": path, "action": string(action), "error": err.Error()})
}
