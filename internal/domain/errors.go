package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBackend signals a non-2xx reply from the query backend.
	ErrBackend = errors.New("backend error")
	// ErrMalformedResponse signals a reply body that could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrEmptyQuery signals blank query text.
	ErrEmptyQuery = errors.New("query text is empty")
	// ErrNoFile signals an upload without a file.
	ErrNoFile = errors.New("no file selected")
)

// APIError wraps ErrBackend with the HTTP status and the server-provided detail.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: status %d", ErrBackend.Error(), e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrBackend.Error(), e.StatusCode, e.Detail)
}

func (e *APIError) Unwrap() error { return ErrBackend }

// NewAPIError creates a backend error for the given status and detail.
func NewAPIError(statusCode int, detail string) error {
	return &APIError{StatusCode: statusCode, Detail: detail}
}
