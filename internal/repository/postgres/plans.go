package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kirinyoku/seatplan/internal/domain"
)

type PlanRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *PlanRepo) With(db DB) *PlanRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *PlanRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Create inserts a plan. A duplicate id yields repository.ErrConflict.
func (r *PlanRepo) Create(ctx context.Context, p *domain.Plan) error {
	const op = "postgres.PlanRepo.Create"

	db := r.handle()

	err := db.QueryRow(ctx,
		`INSERT INTO plans (id, version, snapshot)
		 VALUES ($1, $2, $3::jsonb)
		 RETURNING created_at`,
		p.ID, p.Version, string(p.Snapshot),
	).Scan(&p.CreatedAt)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *PlanRepo) Get(ctx context.Context, id string) (*domain.Plan, error) {
	const op = "postgres.PlanRepo.Get"

	db := r.handle()

	var (
		p    domain.Plan
		snap string
	)
	err := db.QueryRow(ctx,
		`SELECT id, version, snapshot::text, created_at
		 FROM plans WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Version, &snap, &p.CreatedAt)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	p.Snapshot = []byte(snap)

	return &p, nil
}
