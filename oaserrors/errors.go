package oaserrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
// These allow quick checks without type assertions.
var (
	// ErrParse indicates a document could not be decoded.
	ErrParse = errors.New("parse error")

	// ErrReference indicates a reference resolution failure.
	ErrReference = errors.New("reference error")

	// ErrNoContent indicates an input normalised to nothing.
	ErrNoContent = errors.New("no content")

	// ErrReferenceNotFound indicates a pointer or source that does not exist.
	ErrReferenceNotFound = errors.New("reference not found")

	// ErrSelfReference indicates a $ref that resolves back to itself.
	ErrSelfReference = errors.New("self reference")

	// ErrFetch indicates a source plugin failed to retrieve a document.
	ErrFetch = errors.New("fetch failed")

	// ErrValidation indicates a schema validation failure.
	ErrValidation = errors.New("validation error")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// Code classifies a ReferenceError.
type Code string

const (
	// CodeNoContent is reported when an input has no document content.
	CodeNoContent Code = "NO_CONTENT"
	// CodeInvalidReference is reported when a pointer cannot be traversed.
	CodeInvalidReference Code = "INVALID_REFERENCE"
	// CodeExternalReferenceNotFound is reported when a referenced source is not loaded.
	CodeExternalReferenceNotFound Code = "EXTERNAL_REFERENCE_NOT_FOUND"
	// CodeSelfReference is reported when a $ref chain revisits a reference.
	CodeSelfReference Code = "SELF_REFERENCE"
	// CodeFetchFailed is reported when a source plugin returns an error.
	CodeFetchFailed Code = "FETCH_FAILED"
)

// ParseError represents a failure to decode a JSON or YAML document.
type ParseError struct {
	// Path is the file path or source identifier
	Path string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Column is the column number where the error occurred (0 if unknown)
	Column int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			msg += fmt.Sprintf(", column %d", e.Column)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ReferenceError is a resolution failure recorded against a $ref or an input.
//
// Message is the user-facing text (for example "Can't resolve reference: #/a")
// and, together with Code, identifies the error for de-duplication.
type ReferenceError struct {
	// Code classifies the failure
	Code Code
	// Ref is the reference string (or input identifier) that failed
	Ref string
	// Source is the identifier of the document holding the reference, if known
	Source string
	// Message is the user-facing description
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReferenceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "reference error"
		if e.Ref != "" {
			msg += ": " + e.Ref
		}
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrReference always, and the code-specific sentinel for Code.
func (e *ReferenceError) Is(target error) bool {
	switch target {
	case ErrReference:
		return true
	case ErrNoContent:
		return e.Code == CodeNoContent
	case ErrReferenceNotFound:
		return e.Code == CodeInvalidReference || e.Code == CodeExternalReferenceNotFound
	case ErrSelfReference:
		return e.Code == CodeSelfReference
	case ErrFetch:
		return e.Code == CodeFetchFailed
	}
	return false
}

// Key returns the de-duplication key of the error: its code and message.
func (e *ReferenceError) Key() string {
	return string(e.Code) + "\x00" + e.Message
}

// ValidationError represents a schema violation reported by a validator.
type ValidationError struct {
	// Path is the JSON pointer of the offending instance location
	Path string
	// Keyword is the schema keyword that failed (e.g., "required")
	Keyword string
	// Value is the problematic value (may be nil)
	Value any
	// Message describes the validation failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	msg := "validation error"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Keyword != "" {
		msg += " (" + e.Keyword + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ResourceLimitError represents a resource exhaustion condition.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded
	// Common values: "fetch_count", "file_size"
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the value that exceeded the limit (may be 0 if unknown)
	Actual int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns nil as ResourceLimitError has no underlying cause.
func (e *ResourceLimitError) Unwrap() error {
	return nil
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// ConfigError represents an invalid configuration or input.
// This includes invalid options, missing required inputs, and conflicting settings.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
