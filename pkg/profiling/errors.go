package profiling

import (
	"errors"
	"fmt"
)

var (
	// ErrUnmatchedEnd is matched by every UnmatchedEndError.
	ErrUnmatchedEnd = errors.New("unmatched profiling end")
	// ErrResourceIncreased is matched by every ResourceIncreaseError.
	ErrResourceIncreased = errors.New("metered resource increased")
)

// UnmatchedEndError is returned by End when no active section has the ID.
type UnmatchedEndError struct {
	ID string
}

func (e *UnmatchedEndError) Error() string {
	return fmt.Sprintf("No active profiling section found for ID: %s", e.ID)
}

func (e *UnmatchedEndError) Is(target error) bool {
	return target == ErrUnmatchedEnd
}

// ResourceIncreaseError is returned by End when the resource value at the end
// of a section is larger than at its start. The section is still recorded,
// with its total clamped to zero.
type ResourceIncreaseError struct {
	ID    string
	Start uint64
	End   uint64
}

func (e *ResourceIncreaseError) Error() string {
	return fmt.Sprintf("compute units for ID %s increased from %d to %d", e.ID, e.Start, e.End)
}

func (e *ResourceIncreaseError) Is(target error) bool {
	return target == ErrResourceIncreased
}
