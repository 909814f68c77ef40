package services

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches any APIError carrying a 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNetwork wraps transport failures: DNS, refused connections, timeouts.
	ErrNetwork = errors.New("network error")
	// ErrMissingToken is returned when a login response carries no token.
	ErrMissingToken = errors.New("login response carried no token")
)

// APIError is a non-2xx response. Message is the server's error or message
// text, or the caller's fallback when the body had neither.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}
