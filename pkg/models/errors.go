package models

import (
	"fmt"
)

// Role names which side of a mirror a path belongs to
type Role string

const (
	RoleHost Role = "host"
	RoleDest Role = "destination"
)

// NotFoundError is returned when a required top-level path is missing.
// It is fatal: the operation stops and the caller sees the error.
type NotFoundError struct {
	Path string
	Role Role
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s directory not found: %s: %v", e.Role, e.Path, e.Err)
	}
	return fmt.Sprintf("%s directory not found: %s", e.Role, e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// AccessError reports a nested entry that could not be read or written
type AccessError struct {
	Path string
	Op   string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// TypeMismatchError reports a name that has a different kind on each side
type TypeMismatchError struct {
	Path     string
	HostKind EntryKind
	DestKind EntryKind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch at %s: host is %s, destination is %s", e.Path, e.HostKind, e.DestKind)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
