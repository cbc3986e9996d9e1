package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres unique_violation.
const pgDuplicateKeyCode = "23505"

// MapError folds driver errors into the calling domain's error pair:
// sql.ErrNoRows becomes notFoundErr and a unique constraint violation
// becomes duplicateErr. Anything else passes through untouched.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgDuplicateKeyCode {
		return duplicateErr
	}

	return err
}
