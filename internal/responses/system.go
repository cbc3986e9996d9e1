package responses

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/fieldscope/verity/pkg/pagination"
)

// System defines the public contract for response domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Response], error)

	Find(ctx context.Context, id uuid.UUID) (*Response, error)
	Create(ctx context.Context, cmd CreateCommand) (*Response, error)

	// SetStatus transitions a pending response to its verification outcome
	// within the given transaction. Returns ErrAlreadyVerified when the
	// response is no longer pending.
	SetStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string) error
}
