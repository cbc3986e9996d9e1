package surveys

import (
	"errors"
	"net/http"
)

// Domain errors for survey definition operations.
var (
	ErrNotFound = errors.New("survey not found")
)

// MapHTTPStatus maps survey domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
