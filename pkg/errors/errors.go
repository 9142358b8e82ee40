// Package errors provides structured error types for the bluntify pipeline.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the library packages
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Each code corresponds to one failure mode of the pipeline. All of them are
// fatal to the run except INCONSISTENT_SUCCESSOR, which is recovered locally
// by falling back from the exact biclique cover to the heuristic one and is
// therefore normally represented as a value result rather than an error.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeParse, "line %d: malformed S record", n)
//	if errors.Is(err, errors.ErrCodeParse) {
//	    // Handle parse error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the pipeline's failure modes.
const (
	// ErrCodeParse marks a malformed GFA line.
	ErrCodeParse Code = "PARSE_ERROR"

	// ErrCodeMissingOverlap marks an edge present in the graph with no
	// overlap record after canonicalization.
	ErrCodeMissingOverlap Code = "MISSING_OVERLAP"

	// ErrCodeOrphanedTerminus marks a biclique-participating handle with no
	// surviving parent side after duplication.
	ErrCodeOrphanedTerminus Code = "ORPHANED_TERMINUS"

	// ErrCodeParentNotFound marks a factorization that found neither
	// endpoint of a biclique edge equal to the target node.
	ErrCodeParentNotFound Code = "PARENT_NOT_FOUND_ON_EDGE"

	// ErrCodeInconsistentSuccessor marks a Galois-tree construction that
	// detected a non-domino-free center.
	ErrCodeInconsistentSuccessor Code = "INCONSISTENT_SUCCESSOR"

	// ErrCodeIO marks input/output file errors.
	ErrCodeIO Code = "IO_ERROR"

	// ErrCodeInternal marks unexpected internal errors.
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It compares the code of the first *Error found in err's chain; *Errors
// wrapped deeper inside that one are not examined.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
