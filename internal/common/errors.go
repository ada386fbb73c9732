package common

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrMisconfigured = errors.New("server misconfigured")
	ErrConflict      = errors.New("conflict")
	ErrNotFound      = errors.New("resource not found")
	ErrStorage       = errors.New("storage failure")

	// ErrPostNotFound is returned by the repository for a missing post key
	ErrPostNotFound = fmt.Errorf("post not found: %w", ErrNotFound)
)

// Error carries a kind, a caller-facing message and an optional cause
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Validation builds a 400 error
func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

// NotFound builds a 404 error
func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Conflict builds a 409 error
func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// Unauthorized builds a 401 error
func Unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Message: msg}
}

// Misconfigured builds a 500 error for missing server settings
func Misconfigured(msg string) error {
	return &Error{Kind: ErrMisconfigured, Message: msg}
}

// Storage wraps a backend failure
func Storage(msg string, err error) error {
	return &Error{Kind: ErrStorage, Message: msg, Err: err}
}

// MessageOf returns the caller-facing message of err
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	switch {
	case errors.Is(err, ErrPostNotFound):
		return "Not found"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	}
	return err.Error()
}
