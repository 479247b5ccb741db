// Package errors provides structured error types for coalesce.
//
// Every failure the simplification core can report carries a machine-readable
// [Code] so that the CLI, the HTTP API and library callers can branch on the
// kind of problem without parsing messages:
//
//   - INVALID_*: caller input violates a precondition
//   - QUEUE_NOT_DRAINED: internal invariant of the sweep was broken
//   - FILE_NOT_FOUND, INVALID_FORMAT: table file problems
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInterval, "edge %d: left %d >= right %d", i, l, r)
//	if errors.Is(err, errors.ErrCodeInvalidInterval) {
//	    // Handle malformed interval
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Genealogy input errors
	ErrCodeInvalidInterval     Code = "INVALID_INTERVAL"
	ErrCodeInvalidSampleIndex  Code = "INVALID_SAMPLE_INDEX"
	ErrCodeInvalidGenomeLength Code = "INVALID_GENOME_LENGTH"
	ErrCodeInvalidNodeIndex    Code = "INVALID_NODE_INDEX"
	ErrCodeInvalidOrder        Code = "INVALID_ORDER"

	// Generic input errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Invariant violations inside the sweep
	ErrCodeQueueNotDrained Code = "QUEUE_NOT_DRAINED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
// It unwraps the error chain looking for an *Error with a matching code.
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

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsInput reports whether err was caused by invalid caller input, as opposed
// to an internal failure. The API layer uses it to pick a status code.
func IsInput(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInterval, ErrCodeInvalidSampleIndex, ErrCodeInvalidGenomeLength,
		ErrCodeInvalidNodeIndex, ErrCodeInvalidOrder, ErrCodeInvalidInput,
		ErrCodeInvalidFormat, ErrCodeInvalidPath:
		return true
	}
	return false
}
