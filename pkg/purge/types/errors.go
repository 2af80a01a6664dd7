package types

import (
	"errors"
	"fmt"
)

// ErrCollision is matched by every *CollisionError.
var ErrCollision = errors.New("destination already exists")

// PathError reports a source path that cannot be mapped into quarantine.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("cannot quarantine %q: %s", e.Path, e.Reason)
}

// ResourceSetupError reports a directory or lock the run needs before
// traversal and could not obtain. It is fatal to the run.
type ResourceSetupError struct {
	Resource string
	Path     string
	Err      error
}

func (e *ResourceSetupError) Error() string {
	return fmt.Sprintf("setting up %s %q: %v", e.Resource, e.Path, e.Err)
}

func (e *ResourceSetupError) Unwrap() error { return e.Err }

// StatError reports a failure to read a candidate's metadata.
type StatError struct {
	Path string
	Err  error
}

func (e *StatError) Error() string {
	return fmt.Sprintf("stat %s: %v", e.Path, e.Err)
}

func (e *StatError) Unwrap() error { return e.Err }

// MoveError reports a failed relocation. The source is left in place.
type MoveError struct {
	Source      string
	Destination string
	Err         error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %s -> %s: %v", e.Source, e.Destination, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

// CollisionError reports that a computed destination is already occupied.
// Existing quarantine content is never overwritten.
type CollisionError struct {
	Source      string
	Destination string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("quarantine destination %s for %s already exists", e.Destination, e.Source)
}

// Is makes errors.Is(err, ErrCollision) succeed.
func (e *CollisionError) Is(target error) bool { return target == ErrCollision }

// ReclaimItemError reports a quarantine entry that could not be removed.
type ReclaimItemError struct {
	Path string
	Err  error
}

func (e *ReclaimItemError) Error() string {
	return fmt.Sprintf("failed to delete %s: %v", e.Path, e.Err)
}

func (e *ReclaimItemError) Unwrap() error { return e.Err }

// ReclaimError reports that the reclaim step could not start at all.
type ReclaimError struct {
	Dir string
	Err error
}

func (e *ReclaimError) Error() string {
	return fmt.Sprintf("reclaim %s: %v", e.Dir, e.Err)
}

func (e *ReclaimError) Unwrap() error { return e.Err }
