// Package errors provides structured error types for PageGraph decoding.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI, and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages naming the offending element
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - MALFORMED_*: the input document is not usable at all
//   - UNCLASSIFIABLE_* / MISSING_*: per-element schema recovery failures
//   - DUPLICATE_* / DANGLING_*: structural integrity violations
//   - NOT_FOUND: query-time identifier lookups
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDanglingEdge, "edge e3: unknown target node %q", id)
//	if errors.Is(err, errors.ErrCodeDanglingEdge) {
//	    // Handle integrity violation
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedDocument, xmlErr, "parse GraphML")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Document-level errors
	ErrCodeMalformedDocument Code = "MALFORMED_DOCUMENT"
	ErrCodeInvalidInput      Code = "INVALID_INPUT"

	// Per-element classification errors
	ErrCodeUnclassifiableElement Code = "UNCLASSIFIABLE_ELEMENT"
	ErrCodeMissingRequiredField  Code = "MISSING_REQUIRED_FIELD"

	// Structural integrity errors
	ErrCodeDuplicateID  Code = "DUPLICATE_ID"
	ErrCodeDanglingEdge Code = "DANGLING_EDGE"

	// Query errors
	ErrCodeNotFound Code = "NOT_FOUND"

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
