package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kirinyoku/seatplan/internal/repository"
)

// SQLSTATE codes the plan store reacts to.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsRetryable reports whether a transaction failed only because it raced
// another one.
func IsRetryable(err error) bool {
	switch sqlState(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

// wrapDBErr maps driver errors onto repository errors and prefixes op.
// A taken plan id becomes repository.ErrConflict, a missing row
// repository.ErrNotFound.
func wrapDBErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		err = repository.ErrNotFound
	case sqlState(err) == codeUniqueViolation:
		err = fmt.Errorf("%w: %s", repository.ErrConflict, err.Error())
	}
	return fmt.Errorf("%s:%w", op, err)
}
