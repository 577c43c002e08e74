package client

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unauthorized reports whether the backend rejected the caller's credentials.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

func newAPIError(method, path string, status int, message string) *APIError {
	if message == "" {
		message = fmt.Sprintf("HTTP error %d", status)
	}
	return &APIError{Method: method, Path: path, StatusCode: status, Message: message}
}

// IsUnauthorized reports whether err carries a 401 or 403 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}
