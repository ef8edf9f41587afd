// Package errors carries coded errors through the render pipeline. Every
// error the engine, importers, server, or CLI surface has a machine-readable
// Code, so the server can map codes to HTTP statuses and the CLI can show
// the message without the code prefix.
//
// Codes group by family: INVALID_* for rejected input, *_NOT_FOUND for
// missing resources, SCRIPT_* for condition script failures, and the rest
// for stage-specific faults.
//
//	err := errors.New(errors.ErrCodeLayoutNotFound, "layout %q", name)
//	err = errors.Wrap(errors.ErrCodeImport, cause, "import %s", path)
//	if errors.Is(err, errors.ErrCodeImport) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidLayout  Code = "INVALID_LAYOUT"
	ErrCodeInvalidMonster Code = "INVALID_MONSTER"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeMissingField   Code = "MISSING_FIELD"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeLayoutNotFound  Code = "LAYOUT_NOT_FOUND"
	ErrCodeMonsterNotFound Code = "MONSTER_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	// Condition script errors
	ErrCodeScript        Code = "SCRIPT_ERROR"
	ErrCodeScriptTimeout Code = "SCRIPT_TIMEOUT"

	// Import errors
	ErrCodeImport Code = "IMPORT_ERROR"

	// Rendering errors
	ErrCodeMeasure Code = "MEASURE_ERROR"
	ErrCodeProduce Code = "PRODUCE_ERROR"

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
