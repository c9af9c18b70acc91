package uow

import (
	"context"

	"github.com/kirinyoku/seatplan/internal/repository"
)

// AfterCommit is a function that runs after a successful transaction commit.
type AfterCommit func(ctx context.Context)

// Transactor runs fn atomically against a plan store. Both the postgres and
// the file store implement it.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, plans repository.PlanRepository) error) error
}

// UoW represents a unit of work.
type UoW struct {
	tx Transactor
}

func NewUoW(tx Transactor) *UoW {
	return &UoW{tx: tx}
}

// Do runs fn inside the transaction. After a successful commit,
// it executes all after-commit hooks in registration order.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, plans repository.PlanRepository, after func(AfterCommit)) error,
) error {
	var hooks []AfterCommit

	err := u.tx.InTx(ctx, func(ctx context.Context, plans repository.PlanRepository) error {
		hooks = hooks[:0]
		return fn(ctx, plans, func(h AfterCommit) {
			hooks = append(hooks, h)
		})
	})
	if err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}
