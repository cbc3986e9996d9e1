package responses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fieldscope/verity/pkg/pagination"
	"github.com/fieldscope/verity/pkg/query"
	"github.com/fieldscope/verity/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a response repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "responses"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Response], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Phone", "Interviewer")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count responses: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanResponse)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Response, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	resp, err := repository.QueryOne(ctx, r.db, q, args, scanResponse)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &resp, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Response, error) {
	answers, err := json.Marshal(cmd.Answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}

	q := `
		INSERT INTO survey_responses(id, survey_id, mode, answers, duration_seconds, audio_ref, call_id, phone, gender, age, interviewer)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, survey_id, mode, answers, duration_seconds, status, audio_ref, call_id, phone, gender, age, interviewer, submitted_at, updated_at`

	insertArgs := []any{
		uuid.New(),
		cmd.SurveyID,
		cmd.Mode,
		answers,
		cmd.DurationSeconds,
		cmd.AudioRef,
		cmd.CallID,
		cmd.Phone,
		cmd.Gender,
		cmd.Age,
		cmd.Interviewer,
	}

	resp, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Response, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanResponse)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("response registered", "id", resp.ID, "survey", resp.SurveyID, "mode", resp.Mode)
	return &resp, nil
}

func (r *repo) SetStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string) error {
	err := repository.ExecExpectOne(
		ctx, tx,
		"UPDATE survey_responses SET status = $1, updated_at = now() WHERE id = $2 AND status = $3",
		status, id, StatusPending,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAlreadyVerified
		}
		return fmt.Errorf("update response status: %w", err)
	}

	r.logger.Info("response status updated", "id", id, "status", status)
	return nil
}
