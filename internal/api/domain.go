package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/fieldscope/verity/internal/assignments"
	"github.com/fieldscope/verity/internal/media"
	"github.com/fieldscope/verity/internal/responses"
	"github.com/fieldscope/verity/internal/review"
	"github.com/fieldscope/verity/internal/surveys"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Surveys   surveys.System
	Responses responses.System
	Leases    assignments.System
	Tracker   *assignments.Tracker
	Media     media.System
	Review    review.System
}

// NewDomain creates all domain systems from the API runtime. Lease cleanup
// on session expiry, dismissal, or replacement both releases the lease row
// and drops any cached playback for the response.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	surveysSystem := surveys.New(db, runtime.Logger)

	responsesSystem := responses.New(
		db,
		runtime.Logger,
		runtime.Pagination,
	)

	leases := assignments.New(db, responsesSystem, runtime.Logger)

	mediaSystem := media.New(
		runtime.Storage,
		runtime.Telephony,
		responsesSystem,
		runtime.SignedURLTTL,
		runtime.Logger,
	)

	cleanup := func(ctx context.Context, responseID uuid.UUID) error {
		defer mediaSystem.Invalidate(responseID)
		return leases.Release(ctx, responseID)
	}

	tracker := assignments.NewTracker(
		cleanup,
		runtime.Review.TickIntervalDuration(),
		runtime.Logger,
	)

	reviewSystem := review.New(
		db,
		responsesSystem,
		surveysSystem,
		leases,
		mediaSystem,
		tracker,
		runtime.Review.LeaseTTLDuration(),
		runtime.Logger,
	)

	return &Domain{
		Surveys:   surveysSystem,
		Responses: responsesSystem,
		Leases:    leases,
		Tracker:   tracker,
		Media:     mediaSystem,
		Review:    reviewSystem,
	}
}
