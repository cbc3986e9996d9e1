package review

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fieldscope/verity/internal/assignments"
	"github.com/fieldscope/verity/internal/media"
	"github.com/fieldscope/verity/internal/responses"
	"github.com/fieldscope/verity/internal/surveys"
	"github.com/fieldscope/verity/pkg/repository"
)

type repo struct {
	db        *sql.DB
	responses responses.System
	surveys   surveys.System
	leases    assignments.System
	media     media.System
	tracker   *assignments.Tracker
	leaseTTL  time.Duration
	logger    *slog.Logger
}

// New creates a verification workflow implementing the System interface.
func New(
	db *sql.DB,
	resp responses.System,
	defs surveys.System,
	leases assignments.System,
	med media.System,
	tracker *assignments.Tracker,
	leaseTTL time.Duration,
	logger *slog.Logger,
) System {
	return &repo{
		db:        db,
		responses: resp,
		surveys:   defs,
		leases:    leases,
		media:     med,
		tracker:   tracker,
		leaseTTL:  leaseTTL,
		logger:    logger.With("system", "review"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Next(ctx context.Context, reviewer string, filters assignments.Filters) (*assignments.Grant, error) {
	session := r.tracker.Session(reviewer)
	session.Begin()

	grant, err := r.leases.Claim(ctx, reviewer, filters, r.leaseTTL)
	if err != nil {
		session.Deny()
		return nil, err
	}

	session.Activate(grant.Response.ID, grant.ExpiresAt)
	r.logger.Info("assignment granted",
		"response", grant.Response.ID,
		"reviewer", reviewer,
		"expires_at", grant.ExpiresAt,
	)
	return grant, nil
}

func (r *repo) Release(ctx context.Context, reviewer string, responseID uuid.UUID) error {
	session := r.tracker.Session(reviewer)
	if id, _, ok := session.Active(); ok && id == responseID {
		session.Close()
		return nil
	}

	// The session never held this lease, so release it directly. An
	// absent lease means expiry or the sweeper already cleaned it up.
	if err := r.leases.Release(ctx, responseID); err != nil && !errors.Is(err, assignments.ErrLeaseNotFound) {
		r.logger.Warn("release failed", "response", responseID, "error", err)
	}
	r.media.Invalidate(responseID)
	return nil
}

func (r *repo) Submit(ctx context.Context, reviewer string, responseID uuid.UUID, form Form) (*Verification, error) {
	resp, err := r.responses.Find(ctx, responseID)
	if err != nil {
		return nil, err
	}

	survey, err := r.surveys.Find(ctx, resp.SurveyID)
	if err != nil {
		return nil, fmt.Errorf("load survey %s: %w", resp.SurveyID, err)
	}
	catalog := survey.Catalog()

	lease, err := r.leases.Holder(ctx, responseID)
	if err != nil {
		if errors.Is(err, assignments.ErrLeaseNotFound) {
			return nil, assignments.ErrLeaseExpired
		}
		return nil, err
	}
	if lease.Reviewer != reviewer {
		return nil, assignments.ErrLeaseConflict
	}

	if !IsComplete(form, resp, catalog) {
		return nil, ErrIncomplete
	}

	outcome := Decide(form, resp, catalog)
	status := responses.StatusApproved
	if outcome == OutcomeRejected {
		status = responses.StatusRejected
	}

	criteriaJSON, err := json.Marshal(form.Criteria())
	if err != nil {
		return nil, fmt.Errorf("marshal criteria: %w", err)
	}

	insertQ := `
		INSERT INTO verifications (response_id, outcome, criteria, feedback, verified_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, response_id, outcome, criteria, feedback, verified_by, verified_at`

	insertArgs := []any{responseID, string(outcome), criteriaJSON, form.Feedback, reviewer}

	v, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Verification, error) {
		ver, err := repository.QueryOne(ctx, tx, insertQ, insertArgs, scanVerification)
		if err != nil {
			return Verification{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		if err := r.responses.SetStatus(ctx, tx, responseID, status); err != nil {
			return Verification{}, err
		}

		if err := r.leases.ReleaseTx(ctx, tx, responseID); err != nil && !errors.Is(err, assignments.ErrLeaseNotFound) {
			return Verification{}, err
		}

		return ver, nil
	})
	if err != nil {
		return nil, err
	}

	r.tracker.Session(reviewer).Submit()
	r.media.Invalidate(responseID)

	r.logger.Info("verification submitted",
		"id", v.ID,
		"response", responseID,
		"reviewer", reviewer,
		"outcome", v.Outcome,
	)
	return &v, nil
}

func (r *repo) FindByResponse(ctx context.Context, responseID uuid.UUID) (*Verification, error) {
	q := `
		SELECT id, response_id, outcome, criteria, feedback, verified_by, verified_at
		FROM verifications
		WHERE response_id = $1`

	v, err := repository.QueryOne(ctx, r.db, q, []any{responseID}, scanVerification)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &v, nil
}

func (r *repo) Session(reviewer string) SessionStatus {
	session := r.tracker.Session(reviewer)

	id, expiresAt, ok := session.Active()
	status := SessionStatus{State: session.State()}
	if ok {
		status.ResponseID = &id
		if remaining := time.Until(expiresAt); remaining > 0 {
			status.RemainingSeconds = int(remaining / time.Second)
		}
	}
	return status
}

func scanVerification(s repository.Scanner) (Verification, error) {
	var (
		v        Verification
		criteria []byte
	)
	if err := s.Scan(
		&v.ID,
		&v.ResponseID,
		&v.Outcome,
		&criteria,
		&v.Feedback,
		&v.VerifiedBy,
		&v.VerifiedAt,
	); err != nil {
		return v, err
	}

	if len(criteria) > 0 {
		if err := json.Unmarshal(criteria, &v.Criteria); err != nil {
			return v, fmt.Errorf("decode verification criteria: %w", err)
		}
	}

	return v, nil
}
