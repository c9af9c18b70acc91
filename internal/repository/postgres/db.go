package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/seatplan/internal/repository"
)

const maxTxAttempts = 3

// DB is what the plan repository needs from a pool or a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the postgres plan store.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Plans() *PlanRepo { return &PlanRepo{pool: s.pool} }

// InTx runs fn in a serializable transaction with a plan repository bound
// to it. Serialization failures and deadlocks are retried up to
// maxTxAttempts times; any other error rolls back and is returned as is.
func (s *Store) InTx(
	ctx context.Context,
	fn func(ctx context.Context, plans repository.PlanRepository) error,
) error {
	const op = "repository.postgres.Store.InTx"

	opts := pgx.TxOptions{IsoLevel: pgx.Serializable, AccessMode: pgx.ReadWrite}

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = pgx.BeginTxFunc(ctx, s.pool, opts, func(tx pgx.Tx) error {
			return fn(ctx, s.Plans().With(tx))
		})
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
	}

	return fmt.Errorf("%s: gave up after %d attempts: %w", op, maxTxAttempts, err)
}
