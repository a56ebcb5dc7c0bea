package httpclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/hub/internal/core/domain"
)

// APIError represents a non-success backend response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Unwrap maps the status onto the hub's error kinds: 404 is ErrNotFound,
// 401 and 403 are ErrUnauthorized, anything else is ErrBackendUnavailable.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	default:
		return domain.ErrBackendUnavailable
	}
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// messageFrom extracts a short message from an error body.
func messageFrom(status string, body []byte) string {
	const maxLen = 200
	msg := string(body)
	if len(msg) > maxLen {
		msg = msg[:maxLen] + "..."
	}
	if msg == "" {
		return status
	}
	return msg
}
