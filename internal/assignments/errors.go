package assignments

import (
	"errors"
	"net/http"
)

// Domain errors for lease operations.
var (
	// ErrNoPending indicates no unleased pending response matched the claim.
	ErrNoPending = errors.New("no pending responses available")
	// ErrLeaseNotFound indicates a release targeted a lease that no longer
	// exists. Callers on cleanup paths treat this as ignorable.
	ErrLeaseNotFound = errors.New("lease not found")
	// ErrLeaseConflict indicates the lease is held by a different reviewer.
	ErrLeaseConflict = errors.New("lease held by another reviewer")
	// ErrLeaseExpired indicates the lease lapsed before the operation ran.
	ErrLeaseExpired = errors.New("lease expired")
)

// MapHTTPStatus maps lease domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNoPending) || errors.Is(err, ErrLeaseNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrLeaseConflict) || errors.Is(err, ErrLeaseExpired) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
