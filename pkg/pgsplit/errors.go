package pgsplit

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := svc.Run(ctx, opts)
//	if errors.Is(err, pgsplit.ErrUnterminatedBlock) {
//	    // The dump is truncated or corrupt
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyDump indicates the dump input was empty or unreadable.
	ErrEmptyDump = errors.New("empty dump input")

	// ErrUnterminatedBlock indicates a dollar-quoted or single-quoted
	// literal was still open at end of input.
	ErrUnterminatedBlock = errors.New("unterminated quoted block")

	// ErrDumpFailed indicates the external pg_dump invocation failed.
	ErrDumpFailed = errors.New("pg_dump failed")

	// ErrConnectionFailed indicates the database connection failed.
	ErrConnectionFailed = errors.New("connection failed")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check for sentinel errors
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrEmptyDump), errors.Is(err, ErrUnterminatedBlock):
		return ExitParseError
	case errors.Is(err, ErrDumpFailed):
		return ExitDumpError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	// Check for common connection error patterns
	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
