package errors

import (
	"errors"
	"fmt"
)

// Error kinds for the run. All of them are terminal: the loop does not retry
// above the transport layer, the caller re-issues the request.

var (
	// ErrDataAccess indicates the dataset file is missing or unreadable
	ErrDataAccess = errors.New("data access failed")

	// ErrFormat indicates content that cannot be parsed as tabular data
	ErrFormat = errors.New("unparsable data format")

	// ErrModel indicates the language model call failed or returned malformed output
	ErrModel = errors.New("model call failed")

	// ErrWrite indicates notebook persistence failed
	ErrWrite = errors.New("notebook write failed")
)

// WrapError wraps an error with a context message
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsDataAccess checks if error is a data access error
func IsDataAccess(err error) bool {
	return errors.Is(err, ErrDataAccess)
}

// IsFormat checks if error is a format error
func IsFormat(err error) bool {
	return errors.Is(err, ErrFormat)
}

// IsModel checks if error is a model error
func IsModel(err error) bool {
	return errors.Is(err, ErrModel)
}

// IsWrite checks if error is a write error
func IsWrite(err error) bool {
	return errors.Is(err, ErrWrite)
}
