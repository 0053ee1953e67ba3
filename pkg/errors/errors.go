// Package errors provides structured error types for dotpipe.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Distinguishing "Graphviz is not installed" from "Graphviz failed"
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Every failure raised by the backend carries one of these codes:
//   - REQUIRED_ARGUMENT: structurally invalid call (formatter without renderer)
//   - UNKNOWN_VALUE: engine, format, renderer, formatter or encoding outside its registry
//   - EXECUTABLE_NOT_FOUND: the layout binary is not on the search path
//   - PROCESS_FAILED: the subprocess exited with a non-zero status
//   - VERSION_PARSE: the "dot -V" banner could not be parsed
//   - TIMEOUT: the context deadline passed while the subprocess ran
//   - CANCELED: the caller went away (interrupt, client disconnect)
//
// # Usage
//
//	out, err := client.Pipe(ctx, req, data)
//	if errors.Is(err, errors.ErrCodeExecutableNotFound) {
//	    // Graphviz is not installed
//	}
//
//	var perr *errors.ProcessError
//	if stderrors.As(err, &perr) {
//	    fmt.Println(perr.ExitCode, string(perr.Stderr))
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Caller errors
	ErrCodeRequiredArgument Code = "REQUIRED_ARGUMENT"
	ErrCodeUnknownValue     Code = "UNKNOWN_VALUE"
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Subprocess errors
	ErrCodeExecutableNotFound Code = "EXECUTABLE_NOT_FOUND"
	ErrCodeProcess            Code = "PROCESS_FAILED"
	ErrCodeVersionParse       Code = "VERSION_PARSE"
	ErrCodeTimeout            Code = "TIMEOUT"
	ErrCodeCanceled           Code = "CANCELED"

	// Resource errors
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

// coder is implemented by the typed errors below.
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It walks the error chain and returns the code of the first *Error or typed
// error found.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coder:
			return e.Code()
		}
		err = errors.Unwrap(err)
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

// StatusClientClosedRequest is the non-standard status logged when the
// client disconnects before the response is written.
const StatusClientClosedRequest = 499

// HTTPStatus maps an error to the status code the HTTP API responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeRequiredArgument, ErrCodeUnknownValue, ErrCodeInvalidInput, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeProcess:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeCanceled:
		return StatusClientClosedRequest
	case ErrCodeExecutableNotFound, ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// UnknownValueError reports a value outside its capability registry.
type UnknownValueError struct {
	Kind  string // "engine", "format", "renderer", "formatter" or "encoding"
	Value string // the value as supplied by the caller
}

// Error implements the error interface.
func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("unknown %s: %q", e.Kind, e.Value)
}

// Code returns the error code for this error type.
func (e *UnknownValueError) Code() Code {
	return ErrCodeUnknownValue
}

// ExecutableNotFoundError reports that a Graphviz binary is not on the search path.
type ExecutableNotFoundError struct {
	Name  string
	Cause error
}

// Error implements the error interface.
func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("failed to execute %q, make sure the Graphviz executables are on your systems' PATH", e.Name)
}

// Unwrap returns the lookup or start error.
func (e *ExecutableNotFoundError) Unwrap() error { return e.Cause }

// Code returns the error code for this error type.
func (e *ExecutableNotFoundError) Code() Code {
	return ErrCodeExecutableNotFound
}

// ProcessError reports a subprocess that exited with a non-zero status.
type ProcessError struct {
	Args     []string
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("command %q returned non-zero exit status %d", strings.Join(e.Args, " "), e.ExitCode)
	if s := strings.TrimSpace(string(e.Stderr)); s != "" {
		msg += ": " + s
	}
	return msg
}

// Code returns the error code for this error type.
func (e *ProcessError) Code() Code {
	return ErrCodeProcess
}
