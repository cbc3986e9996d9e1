package review

import (
	"errors"
	"net/http"

	"github.com/fieldscope/verity/internal/assignments"
	"github.com/fieldscope/verity/internal/responses"
)

// Domain errors for verification operations.
var (
	// ErrIncomplete indicates the submitted form left visible questions unanswered.
	ErrIncomplete = errors.New("verification form incomplete")
	// ErrNotFound indicates no verification exists for the requested response.
	ErrNotFound = errors.New("verification not found")
	// ErrDuplicate indicates the response already carries a verification.
	ErrDuplicate = errors.New("verification already exists")
)

// MapHTTPStatus maps verification errors, including those surfaced from the
// lease and response domains, to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrIncomplete):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, assignments.ErrNoPending),
		errors.Is(err, assignments.ErrLeaseNotFound),
		errors.Is(err, assignments.ErrLeaseConflict),
		errors.Is(err, assignments.ErrLeaseExpired):
		return assignments.MapHTTPStatus(err)
	case errors.Is(err, responses.ErrNotFound),
		errors.Is(err, responses.ErrAlreadyVerified):
		return responses.MapHTTPStatus(err)
	default:
		return http.StatusInternalServerError
	}
}
