package responses

import (
	"errors"
	"net/http"
)

// Domain errors for response operations.
var (
	ErrNotFound        = errors.New("response not found")
	ErrDuplicate       = errors.New("response already exists")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrAlreadyVerified = errors.New("response already verified")
)

// MapHTTPStatus maps response domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrAlreadyVerified) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
