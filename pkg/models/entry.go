package models

import (
	"io/fs"
)

// EntryKind classifies a directory entry by its type
type EntryKind string

const (
	// KindFile is a regular file
	KindFile EntryKind = "file"
	// KindDir is a directory
	KindDir EntryKind = "dir"
	// KindSymlink is a symbolic link (never followed)
	KindSymlink EntryKind = "symlink"
	// KindOther covers devices, sockets, pipes
	KindOther EntryKind = "other"
)

// KindOf returns the entry kind for a file mode as reported by Lstat
func KindOf(mode fs.FileMode) EntryKind {
	switch {
	case mode.IsDir():
		return KindDir
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	case mode.IsRegular():
		return KindFile
	default:
		return KindOther
	}
}

// Action represents what the mirror did with an entry
type Action string

const (
	// ActionCopy copies a file that is missing on the destination
	ActionCopy Action = "copy"
	// ActionUpdate overwrites a destination file whose content differs
	ActionUpdate Action = "update"
	// ActionMkdir creates a missing destination directory
	ActionMkdir Action = "mkdir"
	// ActionRemove deletes a destination entry absent from the host
	ActionRemove Action = "remove"
	// ActionSymlink recreates a symbolic link
	ActionSymlink Action = "symlink"
)

// EntryOperation records a single action performed by the mirror
type EntryOperation struct {
	Path     string
	Action   Action
	Kind     EntryKind
	Size     int64
	Checksum string // xxhash64 of the bytes written, copies only
}
