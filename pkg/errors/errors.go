// Package errors provides structured error types for indoorroute.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Routing Taxonomy
//
// Routing failures fall into a small set of categories with fixed severity:
//   - NOT_FOUND: a start/end node or place is absent. Raw pathfinding returns
//     this only when a caller passes an id that is not in the graph.
//   - UNREACHABLE: both endpoints exist but no path joins them. Expected.
//   - AMBIGUOUS: several destinations share a name. Resolved by the
//     candidate scan, never returned as a failure.
//   - STALE_CACHE: a cached entry has outlived its TTL. Treated as a miss.
//   - CONNECTOR_NOT_FOUND: no connector chain of the requested type joins
//     two floors. Expected.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "node %q not in floor %s", id, floor)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Caller validation failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "load floor %s", floor)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Routing outcomes
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeUnreachable       Code = "UNREACHABLE"
	ErrCodeAmbiguous         Code = "AMBIGUOUS"
	ErrCodeStaleCache        Code = "STALE_CACHE"
	ErrCodeConnectorNotFound Code = "CONNECTOR_NOT_FOUND"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFloor  Code = "INVALID_FLOOR"
	ErrCodeInvalidVia    Code = "INVALID_VIA"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Infrastructure errors
	ErrCodeStorage Code = "STORAGE_ERROR"

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

// Recoverable reports whether err belongs to the expected "no route" family
// (unreachable, ambiguous, stale cache, missing connector). Such outcomes are
// logged and surfaced as empty results rather than failures.
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeUnreachable, ErrCodeAmbiguous, ErrCodeStaleCache, ErrCodeConnectorNotFound:
		return true
	}
	return false
}
