// Package errors provides structured error types for storyflow.
//
// This package defines error codes and types that enable:
//   - Consistent error handling between the core pipeline and the CLI
//   - Machine-readable error codes for programmatic handling
//   - The offending identifier carried alongside the message
//
// # Error Codes
//
// The graph-building core only ever returns three codes:
//   - MALFORMED_DOCUMENT: a required attribute is missing or invalid, an id
//     reference resolves to nothing, or the document exceeds traversal bounds
//   - EMPTY_CANDIDATE_SET: nearest-match resolution was given no candidates
//   - UNKNOWN_TRANSITION_KIND: a transition kind outside the recognized set
//
// The remaining codes belong to the surrounding program (file access, flags,
// rendering).
//
// # Usage
//
//	err := errors.Malformed("segue", "segue %q has no kind", id)
//	if errors.Is(err, errors.ErrCodeMalformedDocument) {
//	    fmt.Println(errors.SubjectOf(err))
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Graph-building errors
	ErrCodeMalformedDocument     Code = "MALFORMED_DOCUMENT"
	ErrCodeEmptyCandidateSet     Code = "EMPTY_CANDIDATE_SET"
	ErrCodeUnknownTransitionKind Code = "UNKNOWN_TRANSITION_KIND"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Subject string // Offending identifier (element id, kind value, file path), if any
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

// WithSubject sets the offending identifier and returns e for chaining.
func (e *Error) WithSubject(subject string) *Error {
	e.Subject = subject
	return e
}

// Malformed returns a MALFORMED_DOCUMENT error about subject.
func Malformed(subject, format string, args ...any) *Error {
	return New(ErrCodeMalformedDocument, format, args...).WithSubject(subject)
}

// EmptyCandidates returns an EMPTY_CANDIDATE_SET error for the given target.
func EmptyCandidates(target string) *Error {
	return New(ErrCodeEmptyCandidateSet, "no candidates to match %q against", target).WithSubject(target)
}

// UnknownKind returns an UNKNOWN_TRANSITION_KIND error for kind.
func UnknownKind(kind, transitionID string) *Error {
	return New(ErrCodeUnknownTransitionKind, "transition %q has unknown kind %q", transitionID, kind).WithSubject(kind)
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

// SubjectOf returns the offending identifier recorded on err, or "".
func SubjectOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Subject
	}
	return ""
}

// EnsureSubject records subject on err's *Error if it names none yet, and
// returns err.
func EnsureSubject(err error, subject string) error {
	var e *Error
	if errors.As(err, &e) && e.Subject == "" {
		e.Subject = subject
	}
	return err
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
