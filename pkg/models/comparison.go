package models

// ComparisonResult is the outcome of comparing one directory level of the
// host tree with the same level of the destination tree.
//
// Every entry name lands in exactly one of LeftOnly, RightOnly or the common
// set. Funny and CommonMismatched are disjoint subsets of the common set.
type ComparisonResult struct {
	// Path is the level being compared, relative to both roots ("" for the roots)
	Path string

	// LeftOnly holds names present only under the host
	LeftOnly []string

	// RightOnly holds names present only under the destination
	RightOnly []string

	// Funny holds common names whose kinds differ or that could not be inspected
	Funny []string

	// CommonMismatched holds common files whose byte content differs
	CommonMismatched []string

	// CommonDirs holds names that are directories on both sides
	CommonDirs []string

	// CommonFiles holds names that are regular files or symlinks on both sides
	CommonFiles []string

	// Reasons explains each funny or mismatched name
	Reasons map[string]string
}

// NewComparisonResult creates an empty result for a level
func NewComparisonResult(path string) *ComparisonResult {
	return &ComparisonResult{
		Path:    path,
		Reasons: make(map[string]string),
	}
}

// HasDifference reports whether anything at this level differs.
// Common subdirectories are not inspected.
func (r *ComparisonResult) HasDifference() bool {
	return len(r.LeftOnly) > 0 ||
		len(r.RightOnly) > 0 ||
		len(r.Funny) > 0 ||
		len(r.CommonMismatched) > 0
}

// DifferenceKind categorizes a single difference between two trees
type DifferenceKind string

const (
	// DiffHostOnly indicates the entry exists only under the host
	DiffHostOnly DifferenceKind = "host_only"
	// DiffDestOnly indicates the entry exists only under the destination
	DiffDestOnly DifferenceKind = "dest_only"
	// DiffFunny indicates a kind mismatch or an inspection error
	DiffFunny DifferenceKind = "funny"
	// DiffContent indicates common files with different bytes
	DiffContent DifferenceKind = "content"
)

// Difference is one entry of a full difference listing
type Difference struct {
	Path   string         `json:"path"`
	Kind   DifferenceKind `json:"kind"`
	Reason string         `json:"reason,omitempty"`
}

// Differences flattens the level into Difference values with paths joined
// onto the level path using forward slashes.
func (r *ComparisonResult) Differences() []Difference {
	var diffs []Difference
	add := func(names []string, kind DifferenceKind) {
		for _, name := range names {
			diffs = append(diffs, Difference{
				Path:   joinRel(r.Path, name),
				Kind:   kind,
				Reason: r.Reasons[name],
			})
		}
	}
	add(r.LeftOnly, DiffHostOnly)
	add(r.RightOnly, DiffDestOnly)
	add(r.Funny, DiffFunny)
	add(r.CommonMismatched, DiffContent)
	return diffs
}

func joinRel(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
