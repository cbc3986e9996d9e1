package media

import (
	"errors"
	"net/http"
)

// Domain errors for media resolution.
var (
	// ErrUnavailable indicates no playable audio could be resolved. Surfaced
	// as "no audio", not as a failure.
	ErrUnavailable = errors.New("no audio available")
	// ErrPlaceholder indicates the audio reference is a test or placeholder
	// marker. Surfaced immediately, never retried.
	ErrPlaceholder = errors.New("audio reference is a placeholder")
)

// MapHTTPStatus maps media errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnavailable) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrPlaceholder) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
