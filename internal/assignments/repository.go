package assignments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldscope/verity/internal/responses"
	"github.com/fieldscope/verity/pkg/lifecycle"
	"github.com/fieldscope/verity/pkg/repository"
)

type repo struct {
	db        *sql.DB
	responses responses.System
	logger    *slog.Logger
}

// New creates a lease repository implementing the System interface.
func New(db *sql.DB, resp responses.System, logger *slog.Logger) System {
	return &repo{
		db:        db,
		responses: resp,
		logger:    logger.With("system", "assignments"),
	}
}

func (r *repo) Claim(
	ctx context.Context,
	reviewer string,
	filters Filters,
	ttl time.Duration,
) (*Grant, error) {
	grant, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Grant, error) {
		return r.claimTx(ctx, tx, reviewer, filters, ttl)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"lease granted",
		"response", grant.Response.ID,
		"reviewer", reviewer,
		"expires_at", grant.ExpiresAt,
	)
	return &grant, nil
}

func (r *repo) claimTx(
	ctx context.Context,
	tx *sql.Tx,
	reviewer string,
	filters Filters,
	ttl time.Duration,
) (Grant, error) {
	var grant Grant

	where, args := claimConditions(filters)

	// Expired leases do not block a claim; the upsert reclaims them.
	q := fmt.Sprintf(`
		SELECT r.id FROM survey_responses r
		WHERE r.status = $1
		AND NOT EXISTS (
			SELECT 1 FROM review_assignments a
			WHERE a.response_id = r.id AND a.expires_at > now()
		)%s
		ORDER BY r.submitted_at
		LIMIT 1
		FOR UPDATE OF r SKIP LOCKED`, where)

	var id uuid.UUID
	if err := tx.QueryRowContext(ctx, q, append([]any{responses.StatusPending}, args...)...).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grant, ErrNoPending
		}
		return grant, fmt.Errorf("select next response: %w", err)
	}

	var expiresAt time.Time
	err := tx.QueryRowContext(ctx, `
		INSERT INTO review_assignments (response_id, reviewer, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (response_id) DO UPDATE
			SET reviewer = EXCLUDED.reviewer, expires_at = EXCLUDED.expires_at
			WHERE review_assignments.expires_at <= now()
		RETURNING expires_at`,
		id, reviewer, time.Now().UTC().Add(ttl),
	).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost the reclaim race on an expired lease.
			return grant, ErrNoPending
		}
		return grant, fmt.Errorf("insert lease: %w", err)
	}

	resp, err := r.responses.Find(ctx, id)
	if err != nil {
		return grant, fmt.Errorf("load leased response: %w", err)
	}

	grant.Response = *resp
	grant.ExpiresAt = expiresAt
	return grant, nil
}

func claimConditions(f Filters) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	next := 2 // $1 is the pending status

	add := func(clause string, value any) {
		clauses = append(clauses, fmt.Sprintf(clause, next))
		args = append(args, value)
		next++
	}

	if f.Mode != nil && *f.Mode != "" {
		add("r.mode = $%d", *f.Mode)
	}
	if f.Gender != nil && *f.Gender != "" {
		add("r.gender = $%d", *f.Gender)
	}
	if f.MinAge != nil {
		add("r.age >= $%d", *f.MinAge)
	}
	if f.MaxAge != nil {
		add("r.age <= $%d", *f.MaxAge)
	}
	if f.Search != nil && *f.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(r.phone ILIKE $%d OR r.interviewer ILIKE $%d)", next, next+1))
		pattern := "%" + *f.Search + "%"
		args = append(args, pattern, pattern)
		next += 2
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "\n\t\tAND " + strings.Join(clauses, "\n\t\tAND "), args
}

func (r *repo) Release(ctx context.Context, responseID uuid.UUID) error {
	if err := r.releaseOn(ctx, r.db, responseID); err != nil {
		return err
	}

	r.logger.Info("lease released", "response", responseID)
	return nil
}

func (r *repo) ReleaseTx(ctx context.Context, tx *sql.Tx, responseID uuid.UUID) error {
	return r.releaseOn(ctx, tx, responseID)
}

func (r *repo) releaseOn(ctx context.Context, e repository.Executor, responseID uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, e,
		"DELETE FROM review_assignments WHERE response_id = $1",
		responseID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLeaseNotFound
		}
		return fmt.Errorf("delete lease: %w", err)
	}
	return nil
}

func (r *repo) Holder(ctx context.Context, responseID uuid.UUID) (*Assignment, error) {
	lease := Assignment{ResponseID: responseID}
	err := r.db.QueryRowContext(ctx, `
		SELECT reviewer, expires_at FROM review_assignments
		WHERE response_id = $1 AND expires_at > now()`,
		responseID,
	).Scan(&lease.Reviewer, &lease.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeaseNotFound
		}
		return nil, fmt.Errorf("query lease holder: %w", err)
	}
	return &lease, nil
}

func (r *repo) Start(lc *lifecycle.Coordinator, every time.Duration) error {
	r.logger.Info("starting lease sweeper", "every", every)

	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				return
			case <-ticker.C:
				r.sweep(lc.Context())
			}
		}
	}()

	return nil
}

func (r *repo) sweep(ctx context.Context) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM review_assignments WHERE expires_at <= now()")
	if err != nil {
		r.logger.Warn("lease sweep failed", "error", err)
		return
	}

	if n, err := result.RowsAffected(); err == nil && n > 0 {
		r.logger.Info("expired leases swept", "count", n)
	}
}
