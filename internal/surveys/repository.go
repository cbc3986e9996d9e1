package surveys

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fieldscope/verity/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a survey repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "surveys"),
	}
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Survey, error) {
	q := `
		SELECT id, title, mode, questions, created_at, updated_at
		FROM surveys
		WHERE id = $1`

	s, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanSurvey)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &s, nil
}

func scanSurvey(s repository.Scanner) (Survey, error) {
	var (
		survey    Survey
		questions []byte
	)
	if err := s.Scan(
		&survey.ID,
		&survey.Title,
		&survey.Mode,
		&questions,
		&survey.CreatedAt,
		&survey.UpdatedAt,
	); err != nil {
		return survey, err
	}
	if err := json.Unmarshal(questions, &survey.Questions); err != nil {
		return survey, fmt.Errorf("decode survey questions: %w", err)
	}
	return survey, nil
}
