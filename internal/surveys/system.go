package surveys

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for survey definition lookups.
type System interface {
	Find(ctx context.Context, id uuid.UUID) (*Survey, error)
}
