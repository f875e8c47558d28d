// Package apperr holds the error kinds shared by stores, services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// sentinel kinds; match with errors.Is
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
)

// Error pairs a kind with a message that is safe to show to clients.
type Error struct {
	Kind    error
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool { return e.Kind == target }

func (e *Error) Unwrap() error { return e.cause }

// Validation returns a validation error with a client-facing message.
func Validation(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

// Conflict returns a uniqueness violation error.
func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

// Unauthorized returns an authentication failure.
func Unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }

// Wrap attaches kind and message to a lower level cause.
func Wrap(kind error, msg string, cause error) error {
	return &Error{Kind: kind, Message: msg, cause: cause}
}

// Message extracts the client-facing message, falling back to def when err
// carries none.
func Message(err error, def string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return def
}

// HTTPStatus maps an error kind to its response status. Conflicts answer 400
// like other rejected payloads.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
