// Package errors provides structured error types for topovis.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the server and the pipeline
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages that name the offending entity
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes are grouped by pipeline stage:
//   - FETCH_ERROR: the graph description could not be retrieved
//   - validation codes (DANGLING_*, DUPLICATE_*, ...): malformed graph input
//   - UNSATISFIABLE_CONSTRAINTS: the layout engine rejected the graph
//   - INVALID_CONFIG, INVALID_FORMAT: caller errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDanglingEdgeReference, "edge %s references unknown node %q", key, id)
//	if errors.IsValidation(err) {
//	    // Report upstream data issue
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFetch, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Fetch errors
	ErrCodeFetch Code = "FETCH_ERROR"

	// Graph validation errors
	ErrCodeInvalidInput          Code = "INVALID_INPUT"
	ErrCodeDuplicateID           Code = "DUPLICATE_ID"
	ErrCodeDanglingEdgeReference Code = "DANGLING_EDGE_REFERENCE"
	ErrCodeDanglingGroupMember   Code = "DANGLING_GROUP_MEMBER"
	ErrCodeGroupIDCollision      Code = "GROUP_ID_COLLISION"
	ErrCodeMultipleParents       Code = "MULTIPLE_PARENTS"
	ErrCodeDuplicateEdgeUID      Code = "DUPLICATE_EDGE_UID"

	// Layout errors
	ErrCodeUnsatisfiableConstraints Code = "UNSATISFIABLE_CONSTRAINTS"

	// Caller errors
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// validationCodes is the set of codes raised while building a graph.
var validationCodes = map[Code]bool{
	ErrCodeInvalidInput:          true,
	ErrCodeDuplicateID:           true,
	ErrCodeDanglingEdgeReference: true,
	ErrCodeDanglingGroupMember:   true,
	ErrCodeGroupIDCollision:      true,
	ErrCodeMultipleParents:       true,
	ErrCodeDuplicateEdgeUID:      true,
}

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

// IsValidation reports whether err was raised while validating graph input.
func IsValidation(err error) bool {
	return validationCodes[GetCode(err)]
}

// IsFetch reports whether err is a fetch failure.
func IsFetch(err error) bool {
	return Is(err, ErrCodeFetch)
}

// IsLayout reports whether err is a layout failure.
func IsLayout(err error) bool {
	return Is(err, ErrCodeUnsatisfiableConstraints)
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
