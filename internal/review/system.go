package review

import (
	"context"

	"github.com/google/uuid"

	"github.com/fieldscope/verity/internal/assignments"
)

// System defines the public contract for the verification workflow.
type System interface {
	Handler() *Handler

	// Next claims the next pending response for the reviewer and activates
	// their session. Returns assignments.ErrNoPending when the queue is empty.
	Next(ctx context.Context, reviewer string, filters assignments.Filters) (*assignments.Grant, error)

	// Release dismisses the reviewer's lease on the response without a
	// verdict. Absent leases are treated as already released.
	Release(ctx context.Context, reviewer string, responseID uuid.UUID) error

	// Submit validates the form, derives the outcome, and persists the
	// verification, the response status transition, and the lease release
	// in one transaction. Returns assignments.ErrLeaseConflict when the
	// reviewer no longer holds the lease and ErrIncomplete when visible
	// questions are unanswered.
	Submit(ctx context.Context, reviewer string, responseID uuid.UUID, form Form) (*Verification, error)

	// FindByResponse returns the stored verification for a response.
	FindByResponse(ctx context.Context, responseID uuid.UUID) (*Verification, error)

	// Session reports the reviewer's current lease session state.
	Session(reviewer string) SessionStatus
}

// SessionStatus is a point-in-time snapshot of a reviewer's lease session.
type SessionStatus struct {
	State            assignments.State `json:"state"`
	ResponseID       *uuid.UUID        `json:"response_id,omitempty"`
	RemainingSeconds int               `json:"remaining_seconds"`
}
