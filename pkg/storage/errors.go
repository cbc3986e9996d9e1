package storage

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound means the blob does not exist in the container.
	ErrNotFound = errors.New("blob not found")
	// ErrEmptyKey means the caller passed an empty storage key.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey means the key carries a path traversal segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
)

// MapHTTPStatus translates storage errors for handler responses.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrEmptyKey) || errors.Is(err, ErrInvalidKey) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
