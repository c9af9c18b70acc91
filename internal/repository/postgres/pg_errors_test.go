package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/kirinyoku/seatplan/internal/repository"
)

func TestWrapDBErr(t *testing.T) {
	assert.NoError(t, wrapDBErr("op", nil))

	err := wrapDBErr("postgres.PlanRepo.Get", pgx.ErrNoRows)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Contains(t, err.Error(), "postgres.PlanRepo.Get")

	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: codeUniqueViolation})
	assert.ErrorIs(t, wrapDBErr("op", dup), repository.ErrConflict)

	other := errors.New("connection reset")
	err = wrapDBErr("op", other)
	assert.NotErrorIs(t, err, repository.ErrConflict)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: codeSerializationFailure}))
	assert.True(t, IsRetryable(fmt.Errorf("commit: %w", &pgconn.PgError{Code: codeDeadlockDetected})))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: codeUniqueViolation}))
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.False(t, IsRetryable(nil))
}
