package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the class of an application error.
type Code string

const (
	CodeInvalid      Code = "INVALID_REQUEST" // 400
	CodeUnauthorized Code = "UNAUTHORIZED"    // 401
	CodeNotFound     Code = "NOT_FOUND"       // 404
	CodeConflict     Code = "CONFLICT"        // 409
	CodeUpstream     Code = "UPSTREAM"        // 502
	CodeInternal     Code = "INTERNAL"        // 500
)

// Error is a structured error carrying an HTTP status and a user-facing message.
type Error struct {
	Code    Code
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Invalid creates a 400 error for malformed or empty input.
func Invalid(msg string) *Error {
	return &Error{Code: CodeInvalid, Status: http.StatusBadRequest, Message: msg}
}

// Unauthorized creates a 401 error.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Status: http.StatusUnauthorized, Message: msg}
}

// NotFound creates a 404 error for a missing resource.
func NotFound(kind, id string) *Error {
	return &Error{Code: CodeNotFound, Status: http.StatusNotFound, Message: fmt.Sprintf("%s not found: %s", kind, id)}
}

// Conflict creates a 409 error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Status: http.StatusConflict, Message: msg}
}

// Upstream wraps a failure reported by a model provider or remote backend.
func Upstream(msg string, err error) *Error {
	return &Error{Code: CodeUpstream, Status: http.StatusBadGateway, Message: msg, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Code: CodeInternal, Status: http.StatusInternalServerError, Message: msg, Err: err}
}

// FromStatus rebuilds a coded error from an HTTP status returned by a remote backend.
func FromStatus(status int, msg string) *Error {
	code := CodeInternal
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		code = CodeInvalid
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = CodeUnauthorized
	case status == http.StatusNotFound:
		code = CodeNotFound
	case status == http.StatusConflict:
		code = CodeConflict
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
		code = CodeUpstream
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Code: code, Status: status, Message: msg}
}

// Is reports whether err (or anything it wraps) is an *Error with the given code.
func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
