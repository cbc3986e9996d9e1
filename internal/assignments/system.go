package assignments

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/fieldscope/verity/pkg/lifecycle"
)

// System defines the public contract for lease operations. The repository
// is the granting authority: claims are atomic and exclusive across
// concurrent reviewers.
type System interface {
	// Claim atomically leases the next unleased pending response matching
	// the filters to the given reviewer. Returns ErrNoPending when the
	// queue is empty.
	Claim(ctx context.Context, reviewer string, filters Filters, ttl time.Duration) (*Grant, error)

	// Release destroys the lease on the given response. Returns
	// ErrLeaseNotFound when no live lease exists, which cleanup callers ignore.
	Release(ctx context.Context, responseID uuid.UUID) error

	// ReleaseTx destroys the lease within an enclosing transaction,
	// used by verification submission.
	ReleaseTx(ctx context.Context, tx *sql.Tx, responseID uuid.UUID) error

	// Holder returns the live lease on the response, identifying the holding
	// reviewer and the lease expiry. Returns ErrLeaseNotFound when no live
	// lease exists.
	Holder(ctx context.Context, responseID uuid.UUID) (*Assignment, error)

	// Start registers the expired-lease sweeper with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator, every time.Duration) error
}
