// Package errors provides standardized domain errors with codes for the DocVault API.
//
// Usage:
//
//	// In services - return typed errors
//	if nameTaken {
//	    return errors.Conflict("tag name already in use")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrForbidden) {
//	    response.Forbidden(w, err.Error(), logger)
//	    return
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeForbidden        Code = "FORBIDDEN"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeConflict         Code = "CONFLICT"
	CodeInvalidCriteria  Code = "INVALID_CRITERIA"
	CodeStorageFailure   Code = "STORAGE_FAILURE"
	CodeLinkExpired      Code = "LINK_EXPIRED"
	CodeLinkExhausted    Code = "LINK_EXHAUSTED"
	CodePasswordRequired Code = "PASSWORD_REQUIRED"
	CodePasswordMismatch Code = "PASSWORD_MISMATCH"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized, CodePasswordRequired, CodePasswordMismatch:
		return http.StatusUnauthorized
	case CodeConflict:
		return http.StatusConflict
	case CodeInvalidCriteria:
		return http.StatusBadRequest
	case CodeLinkExpired, CodeLinkExhausted:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrForbidden        = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrUnauthorized     = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrConflict         = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInvalidCriteria  = &Error{Code: CodeInvalidCriteria, Message: "invalid criteria"}
	ErrStorageFailure   = &Error{Code: CodeStorageFailure, Message: "storage failure"}
	ErrLinkExpired      = &Error{Code: CodeLinkExpired, Message: "share link expired"}
	ErrLinkExhausted    = &Error{Code: CodeLinkExhausted, Message: "share link download limit reached"}
	ErrPasswordRequired = &Error{Code: CodePasswordRequired, Message: "password required"}
	ErrPasswordMismatch = &Error{Code: CodePasswordMismatch, Message: "password mismatch"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden creates a forbidden error.
func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// Forbiddenf creates a forbidden error with formatted message.
func Forbiddenf(format string, args ...any) *Error {
	return &Error{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Conflictf creates a conflict error with formatted message.
func Conflictf(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// InvalidCriteria creates an invalid criteria error.
func InvalidCriteria(msg string) *Error {
	return &Error{Code: CodeInvalidCriteria, Message: msg}
}

// InvalidCriteriaf creates an invalid criteria error with formatted message.
func InvalidCriteriaf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidCriteria, Message: fmt.Sprintf(format, args...)}
}

// InvalidCriteriaWithDetails creates an invalid criteria error with details.
func InvalidCriteriaWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeInvalidCriteria, Message: msg, Details: details}
}

// Storage creates a storage failure error wrapping the underlying cause.
func Storage(msg string, cause error) *Error {
	return &Error{Code: CodeStorageFailure, Message: msg, cause: cause}
}

// Storagef creates a storage failure error with formatted message.
func Storagef(format string, args ...any) *Error {
	return &Error{Code: CodeStorageFailure, Message: fmt.Sprintf(format, args...)}
}
