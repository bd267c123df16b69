package batch

import "errors"

var (
	// ErrNoSelection indicates a batch action with nothing selected.
	ErrNoSelection = errors.New("no test cases selected")
	// ErrContainerLocked indicates the parent container is in a
	// terminal state and forbids batch actions.
	ErrContainerLocked = errors.New("container is locked")
	// ErrMoveDeclined indicates the user rejected the impact summary;
	// nothing was changed.
	ErrMoveDeclined = errors.New("move declined")
	// ErrDuplicateProposed indicates the proposed numbers collide with
	// each other.
	ErrDuplicateProposed = errors.New("duplicate numbers in proposed set")
	// ErrDuplicateExisting indicates the proposed numbers collide with
	// existing test cases.
	ErrDuplicateExisting = errors.New("proposed numbers collide with existing test cases")
	// ErrEmptyMutation indicates a batch request with no field changes.
	ErrEmptyMutation = errors.New("no fields to update")
)
