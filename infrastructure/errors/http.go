// Package errors defines the error taxonomy shared by HTTP handlers and the
// central error middleware.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by how it is reported to clients.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConflict
	KindTooLarge
)

// StatusCode maps a Kind to its HTTP status.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Error is an error carrying a client-facing message and status.
// Fields holds per-field validation messages keyed by JSON field name.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a 400 error with field messages.
func Validation(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

// Unauthorized returns a 401 error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// NotFound returns a 404 error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict returns a 409 error wrapping cause.
func Conflict(message string, cause error) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: cause}
}

// TooLarge returns a 413 error.
func TooLarge(message string) *Error {
	return &Error{Kind: KindTooLarge, Message: message}
}

// Internal returns a 500 error wrapping cause.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal Server Error", Err: cause}
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusCode returns the HTTP status for err. Errors outside the taxonomy
// are internal.
func StatusCode(err error) int {
	if e, ok := As(err); ok {
		return e.Kind.StatusCode()
	}
	return http.StatusInternalServerError
}
