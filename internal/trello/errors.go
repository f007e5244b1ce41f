package trello

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("trello: unauthorized")
	ErrNotFound     = errors.New("trello: not found")
)

// APIError is a non-2xx response that is neither 401 nor 404.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("trello: unexpected status %d: %s", e.StatusCode, e.Body)
}

func errorForStatus(status int, body string) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return &APIError{StatusCode: status, Body: body}
	}
}

// Kind names the error class for logs: "unauthorized", "not_found",
// "upstream" or "transport".
func Kind(err error) string {
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &apiErr):
		return "upstream"
	default:
		return "transport"
	}
}

// IsAuthError reports whether the credential was rejected upstream.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
