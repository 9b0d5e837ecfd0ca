package models

import (
	"time"
)

// MirrorOutcome is the per-invocation record of a mirror run
type MirrorOutcome struct {
	// Operation details
	OperationID string
	HostPath    string
	DestPath    string

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics
	Stats Statistics

	// Entries lists every action performed, in walk order
	Entries []EntryOperation

	// Errors encountered on individual entries
	Errors []MirrorError

	// Overall status
	Status MirrorStatus
}

// Statistics holds mirror counters
type Statistics struct {
	FilesCopied    int
	FilesUpdated   int
	FilesUnchanged int
	DirsCreated    int
	LinksCreated   int
	EntriesRemoved int
	EntriesErrored int

	DirsScanned int

	BytesTransferred int64
}

// MirrorStatus represents the overall result
type MirrorStatus string

const (
	// StatusSuccess indicates all entries were mirrored
	StatusSuccess MirrorStatus = "success"
	// StatusNoAction indicates the trees were already identical
	StatusNoAction MirrorStatus = "no_action"
	// StatusPartial indicates some entries failed
	StatusPartial MirrorStatus = "partial"
	// StatusFailed indicates the mirror aborted
	StatusFailed MirrorStatus = "failed"
)

// MirrorError represents a failure on one entry
type MirrorError struct {
	Path      string
	Operation Action
	Error     string
	Timestamp time.Time
}

// NewMirrorOutcome creates an outcome stamped with the operation and start time
func NewMirrorOutcome(op *Operation) *MirrorOutcome {
	return &MirrorOutcome{
		OperationID: op.ID,
		HostPath:    op.HostPath,
		DestPath:    op.DestPath,
		StartTime:   time.Now(),
		Status:      StatusSuccess,
	}
}

// Record appends an action and updates the counters
func (o *MirrorOutcome) Record(entry EntryOperation) {
	o.Entries = append(o.Entries, entry)
	switch entry.Action {
	case ActionCopy:
		o.Stats.FilesCopied++
		o.Stats.BytesTransferred += entry.Size
	case ActionUpdate:
		o.Stats.FilesUpdated++
		o.Stats.BytesTransferred += entry.Size
	case ActionMkdir:
		o.Stats.DirsCreated++
	case ActionSymlink:
		o.Stats.LinksCreated++
	case ActionRemove:
		o.Stats.EntriesRemoved++
	}
}

// Fail records a non-fatal error on one entry and marks the outcome partial
func (o *MirrorOutcome) Fail(path string, action Action, err error) {
	o.Errors = append(o.Errors, MirrorError{
		Path:      path,
		Operation: action,
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
	o.Stats.EntriesErrored++
	o.Status = StatusPartial
}

// Finish stamps the end time
func (o *MirrorOutcome) Finish() {
	o.EndTime = time.Now()
	o.Duration = o.EndTime.Sub(o.StartTime)
}

// Changed reports whether the run modified the destination
func (o *MirrorOutcome) Changed() bool {
	return len(o.Entries) > 0
}

// ExitCode returns the process exit code for the status
func (s MirrorStatus) ExitCode() int {
	switch s {
	case StatusSuccess, StatusNoAction:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	default:
		return 2
	}
}
