package core

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound is returned when a job id does not resolve to a row.
	ErrJobNotFound = errors.New("job not found")

	// ErrNotOwner is returned when the caller does not own the job.
	ErrNotOwner = errors.New("job owned by another user")

	// ErrJobCancelled signals that the job row vanished mid-flight. Once
	// observed, all in-flight work for the job must unwind without retries.
	ErrJobCancelled = errors.New("job cancelled")

	// ErrUnsupportedType is returned when a file cannot be classified.
	ErrUnsupportedType = errors.New("unsupported content type")
)

// TerminalError marks an error retrying cannot fix.
type TerminalError struct {
	Err error
}

func (e *TerminalError) Error() string { return "terminal: " + e.Err.Error() }
func (e *TerminalError) Unwrap() error { return e.Err }

// RetryableError marks a transient error eligible for backoff-and-retry.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return "retryable: " + e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Terminal wraps err as terminal. Nil passes through.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return &TerminalError{Err: err}
}

// Terminalf is Terminal over fmt.Errorf.
func Terminalf(format string, args ...any) error {
	return &TerminalError{Err: fmt.Errorf(format, args...)}
}

// Retryable wraps err as retryable. Nil passes through.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsCancelled reports whether err carries the cancellation signal, either
// the vanished-row sentinel or a cancelled context.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrJobCancelled) || errors.Is(err, context.Canceled)
}

// IsTerminal reports whether the outermost explicit kind on the error
// chain is terminal. Cancellation is its own category, not terminal here.
func IsTerminal(err error) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch e.(type) {
		case *TerminalError:
			return true
		case *RetryableError:
			return false
		}
	}
	return false
}
