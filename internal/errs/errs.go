package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks inputs the math layer refuses to work with.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound marks missing positions, events or pool price data.
	ErrNotFound = errors.New("not found")
)

// Invalid wraps ErrInvalidArgument with a formatted message.
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with a formatted message.
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
