// Package file stores shared plans as plan_<id>.json files in one directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/repository"
)

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type Store struct {
	mu  sync.Mutex
	dir string
}

// New returns a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	const op = "file.New"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	return &Store{dir: dir}, nil
}

// InTx runs fn with writers serialised. Each Create is atomic on its own;
// there is no rollback across several writes.
func (s *Store) InTx(
	ctx context.Context,
	fn func(ctx context.Context, plans repository.PlanRepository) error,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, s.Plans())
}

func (s *Store) Plans() *PlanRepo { return &PlanRepo{dir: s.dir} }

type PlanRepo struct {
	dir string
}

func (r *PlanRepo) path(id string) string {
	return filepath.Join(r.dir, "plan_"+id+".json")
}

// Create writes the snapshot to a temp file and links it into place, so
// readers never see a partial plan and an existing id is never overwritten.
func (r *PlanRepo) Create(ctx context.Context, p *domain.Plan) error {
	const op = "file.PlanRepo.Create"

	if !validID.MatchString(p.ID) {
		return fmt.Errorf("%s: invalid id %q", op, p.ID)
	}

	tmp, err := os.CreateTemp(r.dir, ".plan-*.tmp")
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(p.Snapshot); err != nil {
		tmp.Close()
		return fmt.Errorf("%s:%w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := os.Link(tmp.Name(), r.path(p.ID)); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s:%w", op, repository.ErrConflict)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	if info, err := os.Stat(r.path(p.ID)); err == nil {
		p.CreatedAt = info.ModTime().UTC()
	}
	return nil
}

// Get reads a stored plan. The version is left for the caller to decode.
func (r *PlanRepo) Get(ctx context.Context, id string) (*domain.Plan, error) {
	const op = "file.PlanRepo.Get"

	if !validID.MatchString(id) {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	path := r.path(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	p := &domain.Plan{ID: id, Snapshot: data}
	if info, err := os.Stat(path); err == nil {
		p.CreatedAt = info.ModTime().UTC()
	}
	return p, nil
}
