package repository

import (
	"context"

	"github.com/kirinyoku/seatplan/internal/domain"
)

// PlanRepository stores shared plan snapshots by id.
type PlanRepository interface {
	// Create stores p. ErrConflict means the id is taken.
	Create(ctx context.Context, p *domain.Plan) error
	// Get returns the plan with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Plan, error)
}
