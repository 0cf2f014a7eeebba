package script

import "errors"

var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrTimeout is returned when a script runs past its deadline.
	ErrTimeout = errors.New("lua execution timeout")

	// ErrNoTransform is returned when a script does not define transform.
	ErrNoTransform = errors.New("script does not define a transform function")

	// ErrBadResult is returned when transform returns a non-string value.
	ErrBadResult = errors.New("transform must return a string")
)
