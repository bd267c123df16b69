package testcase

import "errors"

var (
	// ErrMissingNumber indicates a test case without a number.
	ErrMissingNumber = errors.New("test case number required")
	// ErrMissingTitle indicates a test case without a title.
	ErrMissingTitle = errors.New("test case title required")
	// ErrInvalidNumber indicates a malformed test case number.
	ErrInvalidNumber = errors.New("invalid test case number")
	// ErrDuplicateNumber indicates a number that collides with an
	// existing test case in the same team.
	ErrDuplicateNumber = errors.New("duplicate test case number")
	// ErrInvalidPriority indicates an unknown priority level.
	ErrInvalidPriority = errors.New("invalid priority")
)
