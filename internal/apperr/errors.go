// Package apperr defines the error kinds shared across the journal packages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	// ErrCancelled is returned when the user aborts an interactive prompt.
	// It terminates the pipeline but is not reported as a failure.
	ErrCancelled = errors.New("cancelled")
)

// ParseError reports a date or offset token that could not be understood.
type ParseError struct {
	Token string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse date or offset %q", e.Token)
}

// IOError wraps a read, write or copy failure other than not-found.
type IOError struct {
	Op   string // "load", "create", "write", "list", "copy"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ConfigError reports a missing or malformed template entry.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("config: template %q is not defined", e.Key)
	}
	return fmt.Sprintf("config: template %q: %s", e.Key, e.Reason)
}

// IsCancelled reports whether err is a user cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsParse reports whether err is (or wraps) a ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
