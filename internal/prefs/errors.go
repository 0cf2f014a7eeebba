package prefs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidValue is returned when a preference value is not allowed.
	ErrInvalidValue = errors.New("invalid preference value")

	// ErrClosed is returned when using a closed store.
	ErrClosed = errors.New("preferences store closed")
)

// LoadError reports a preferences file that exists but cannot be used.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading preferences %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
