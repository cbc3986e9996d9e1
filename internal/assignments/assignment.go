// Package assignments implements the review lease domain for Verity.
// A lease grants one reviewer exclusive, time-boxed access to one pending
// response. The database is the authority for lease ownership; session
// state tracked here is advisory and exists to drive countdowns and
// best-effort cleanup.
package assignments

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldscope/verity/internal/responses"
)

// Assignment is a stored lease row binding a reviewer to a response.
type Assignment struct {
	ResponseID uuid.UUID `json:"response_id"`
	Reviewer   string    `json:"reviewer"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Grant is the outcome of a successful claim: the leased response and the
// absolute lease expiry.
type Grant struct {
	Response  responses.Response `json:"response"`
	ExpiresAt time.Time          `json:"expires_at"`
}

// Filters scope which pending responses a claim considers.
type Filters struct {
	Search *string `json:"search,omitempty"`
	Gender *string `json:"gender,omitempty"`
	Mode   *string `json:"mode,omitempty"`
	MinAge *int    `json:"min_age,omitempty"`
	MaxAge *int    `json:"max_age,omitempty"`
}
