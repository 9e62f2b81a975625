package app

import (
	"context"
	"errors"

	"delgen/internal/writers"
)

// Exit codes not owned by a typed domain error.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitOutput   = 3
	ExitCanceled = 130
)

// ExitCoder is implemented by errors that select a process exit code.
type ExitCoder interface {
	ExitCode() int
}

// UsageError reports invalid command-line input.
type UsageError struct{ Err error }

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }
func (e *UsageError) ExitCode() int { return ExitUsage }

// OutputError reports a failure writing results.
type OutputError struct{ Err error }

func (e *OutputError) Error() string { return "output: " + e.Err.Error() }
func (e *OutputError) Unwrap() error { return e.Err }
func (e *OutputError) ExitCode() int { return ExitOutput }

// ExitCode maps an error to the process exit code. A consumer closing the
// output early is not a failure.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, writers.ErrWriterClosed), writers.IsBrokenPipe(err):
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCanceled
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return ExitFailure
}
