package core

import "errors"

var (
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrNotAuthenticated is returned locally when an operation that needs
	// a session runs without one; no request is sent.
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrNoTaskSelected is returned by SaveTask when no edit is open.
	ErrNoTaskSelected = errors.New("no task is being edited")
)

// ValidationError is a required or malformed form field caught before any
// request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
