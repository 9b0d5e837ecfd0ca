package compare

import (
	"context"
	"fmt"
	"sort"

	"github.com/sdejongh/dirmirror/pkg/models"
	"github.com/sdejongh/dirmirror/pkg/storage"
)

// DirComparator walks two directory trees in lockstep, one level at a time.
// It never modifies either tree and holds no per-call state, so one value
// may be shared between goroutines.
type DirComparator struct {
	content Comparator
}

// NewDirComparator creates a directory comparator using full binary
// comparison for common files
func NewDirComparator(bufferSize int) *DirComparator {
	return &DirComparator{content: NewBinaryComparator(bufferSize)}
}

// RequiresSync reports whether the destination differs from the host at any
// depth. A missing root on either side is a *models.NotFoundError.
// The walk stops at the first difference found.
func (c *DirComparator) RequiresSync(ctx context.Context, hostPath, destPath string) (bool, error) {
	host, dest, err := openRoots(hostPath, destPath)
	if err != nil {
		return false, err
	}
	defer host.Close()
	defer dest.Close()

	return c.RequiresSyncBackends(ctx, host, dest)
}

// RequiresSyncBackends is RequiresSync over already opened backends
func (c *DirComparator) RequiresSyncBackends(ctx context.Context, host, dest storage.Backend) (bool, error) {
	result, err := c.CompareLevel(ctx, host, dest, "")
	if err != nil {
		return false, rootListError(ctx, host, dest, err)
	}
	return c.requiresSync(ctx, host, dest, result)
}

func (c *DirComparator) requiresSync(ctx context.Context, host, dest storage.Backend, result *models.ComparisonResult) (bool, error) {
	if result.HasDifference() {
		return true, nil
	}

	for _, name := range result.CommonDirs {
		sub, err := c.CompareLevel(ctx, host, dest, joinRel(result.Path, name))
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			// An unlistable nested directory is a funny entry
			return true, nil
		}
		differs, err := c.requiresSync(ctx, host, dest, sub)
		if err != nil || differs {
			return differs, err
		}
	}

	return false, nil
}

// Differences lists every difference between the two trees at every depth.
// Unlike RequiresSync it never stops early.
func (c *DirComparator) Differences(ctx context.Context, hostPath, destPath string) ([]models.Difference, error) {
	host, dest, err := openRoots(hostPath, destPath)
	if err != nil {
		return nil, err
	}
	defer host.Close()
	defer dest.Close()

	result, err := c.CompareLevel(ctx, host, dest, "")
	if err != nil {
		return nil, rootListError(ctx, host, dest, err)
	}

	var diffs []models.Difference
	if err := c.accumulate(ctx, host, dest, result, &diffs); err != nil {
		return nil, err
	}
	return diffs, nil
}

func (c *DirComparator) accumulate(ctx context.Context, host, dest storage.Backend, result *models.ComparisonResult, diffs *[]models.Difference) error {
	*diffs = append(*diffs, result.Differences()...)

	for _, name := range result.CommonDirs {
		rel := joinRel(result.Path, name)
		sub, err := c.CompareLevel(ctx, host, dest, rel)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			*diffs = append(*diffs, models.Difference{
				Path:   rel,
				Kind:   models.DiffFunny,
				Reason: err.Error(),
			})
			continue
		}
		if err := c.accumulate(ctx, host, dest, sub, diffs); err != nil {
			return err
		}
	}

	return nil
}

// CompareLevel compares a single directory level. Listing failures on either
// side are returned as an error; per-entry failures are folded into Funny.
func (c *DirComparator) CompareLevel(ctx context.Context, host, dest storage.Backend, path string) (*models.ComparisonResult, error) {
	hostEntries, err := host.ReadDir(ctx, path)
	if err != nil {
		return nil, &models.AccessError{Path: displayPath(path), Op: "list host", Err: err}
	}
	destEntries, err := dest.ReadDir(ctx, path)
	if err != nil {
		return nil, &models.AccessError{Path: displayPath(path), Op: "list destination", Err: err}
	}

	destByName := make(map[string]storage.FileInfo, len(destEntries))
	for _, e := range destEntries {
		destByName[e.Name] = e
	}

	result := models.NewComparisonResult(path)
	for _, h := range hostEntries {
		d, ok := destByName[h.Name]
		if !ok {
			result.LeftOnly = append(result.LeftOnly, h.Name)
			continue
		}
		delete(destByName, h.Name)

		if err := c.classifyCommon(ctx, host, dest, result, h, d); err != nil {
			return nil, err
		}
	}

	for name := range destByName {
		result.RightOnly = append(result.RightOnly, name)
	}
	sort.Strings(result.RightOnly)

	return result, nil
}

// classifyCommon files a name present on both sides into exactly one of
// CommonDirs, Funny, CommonMismatched or (matching) CommonFiles.
// Only context cancellation is returned as an error.
func (c *DirComparator) classifyCommon(ctx context.Context, host, dest storage.Backend, result *models.ComparisonResult, h, d storage.FileInfo) error {
	name := h.Name
	rel := h.RelativePath

	funny := func(reason error) {
		result.Funny = append(result.Funny, name)
		result.Reasons[name] = reason.Error()
	}

	if h.Kind != d.Kind {
		funny(&models.TypeMismatchError{Path: rel, HostKind: h.Kind, DestKind: d.Kind})
		return nil
	}

	switch h.Kind {
	case models.KindDir:
		result.CommonDirs = append(result.CommonDirs, name)

	case models.KindFile:
		cmp, err := c.content.Compare(ctx, host, dest, rel)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			funny(&models.AccessError{Path: rel, Op: "compare", Err: err})
			return nil
		}
		result.CommonFiles = append(result.CommonFiles, name)
		if cmp.Result == Different {
			result.CommonMismatched = append(result.CommonMismatched, name)
			result.Reasons[name] = cmp.Reason
		}

	case models.KindSymlink:
		hostTarget, err := host.Readlink(ctx, rel)
		if err != nil {
			funny(&models.AccessError{Path: rel, Op: "readlink", Err: err})
			return nil
		}
		destTarget, err := dest.Readlink(ctx, rel)
		if err != nil {
			funny(&models.AccessError{Path: rel, Op: "readlink", Err: err})
			return nil
		}
		result.CommonFiles = append(result.CommonFiles, name)
		if hostTarget != destTarget {
			result.CommonMismatched = append(result.CommonMismatched, name)
			result.Reasons[name] = fmt.Sprintf("link target differs: host=%s, dest=%s", hostTarget, destTarget)
		}

	default:
		funny(fmt.Errorf("unsupported entry type at %s", rel))
	}

	return nil
}

func openRoots(hostPath, destPath string) (*storage.Local, *storage.Local, error) {
	host, err := storage.NewLocal(hostPath, models.RoleHost)
	if err != nil {
		return nil, nil, err
	}
	dest, err := storage.NewLocal(destPath, models.RoleDest)
	if err != nil {
		host.Close()
		return nil, nil, err
	}
	return host, dest, nil
}

// rootListError turns a failure to list either root into a NotFoundError
func rootListError(ctx context.Context, host, dest storage.Backend, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if ae, ok := err.(*models.AccessError); ok {
		role, path := models.RoleHost, host.Root()
		if ae.Op == "list destination" {
			role, path = models.RoleDest, dest.Root()
		}
		return &models.NotFoundError{Path: path, Role: role, Err: ae.Err}
	}
	return err
}

func displayPath(path string) string {
	if path == "" {
		return "."
	}
	return path
}

func joinRel(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
