// Package apperr defines the error taxonomy shared by services and
// controllers. Every expected domain failure is an *Error carrying the HTTP
// status it renders with; anything else renders as a generic 500.
package apperr

import (
	"errors"
	"net/http"
)

// Error is a domain failure with a stable machine code and the HTTP status
// it maps to at the boundary. Message is safe to show to clients.
type Error struct {
	Status  int
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.Message + ": " + e.cause.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// WithCause attaches an underlying error for logs; the client still sees
// only Message.
func (e *Error) WithCause(err error) *Error {
	return &Error{Status: e.Status, Code: e.Code, Message: e.Message, cause: err}
}

func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "VALIDATION", Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "UNAUTHENTICATED", Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Code: "CONFLICT", Message: msg}
}

func InsufficientFunds(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "INSUFFICIENT_FUNDS", Message: msg}
}

func RateLimited(msg string) *Error {
	return &Error{Status: http.StatusTooManyRequests, Code: "RATE_LIMITED", Message: msg}
}

// Upstream marks a dependency failure (email, geocoding). The cause stays
// server-side.
func Upstream(err error, msg string) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "UPSTREAM", Message: msg, cause: err}
}

func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "INTERNAL", Message: "something went wrong", cause: err}
}

// From normalizes any error into an *Error, defaulting to Internal so
// unknown failures never leak details to the client.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// Is reports whether err is an *Error with the given code.
func Is(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
