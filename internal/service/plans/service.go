// Package plans stores shared floor plans on the server and serves them
// back by id.
package plans

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/hall"
	"github.com/kirinyoku/seatplan/internal/planner"
	"github.com/kirinyoku/seatplan/internal/repository"
	redisrepo "github.com/kirinyoku/seatplan/internal/repository/redis"
	"github.com/kirinyoku/seatplan/internal/snapshot"
	"github.com/kirinyoku/seatplan/internal/uow"
)

const (
	idBytes       = 6
	maxIDAttempts = 5
	maxIDLength   = 64
)

// Events is told about every stored plan.
type Events interface {
	PublishPlanSaved(ctx context.Context, ev domain.PlanSaved) error
}

type Config struct {
	// BaseURL is where the planner page is served; share links point there.
	BaseURL string
}

// SaveResult is what Save hands back to the client.
type SaveResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	URL     string `json:"url"`
}

type Service struct {
	uow     *uow.UoW
	plans   repository.PlanRepository
	cache   *redisrepo.PlanCache
	events  Events
	limiter *redisrepo.SaveLimiter
	hall    *hall.Hall
	logger  *slog.Logger
	newID   func() string
	cfg     Config
}

type Option func(*Service)

// WithIDGenerator replaces the random plan id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New wires the service. tx runs writes; plans serves reads. cache, events
// and limiter are optional.
func New(
	tx uow.Transactor,
	plans repository.PlanRepository,
	cache *redisrepo.PlanCache,
	events Events,
	limiter *redisrepo.SaveLimiter,
	logger *slog.Logger,
	cfg Config,
	opts ...Option,
) *Service {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		uow:     uow.NewUoW(tx),
		plans:   plans,
		cache:   cache,
		events:  events,
		limiter: limiter,
		hall:    hall.Default(),
		logger:  logger,
		newID:   randomID,
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a snapshot under a fresh id.
//
// Parameters:
//   - ctx: request-scoped context.
//   - raw: snapshot JSON in any supported version.
//   - clientKey: rate limit bucket, usually the caller's address. Empty skips the limit.
//
// Returns:
//   - SaveResult: the new id and its share link.
//   - error: plans.ErrInvalidSnapshot if raw is empty or cannot be read.
//   - error: plans.RateLimitedError if the caller saved too often.
func (s *Service) Save(ctx context.Context, raw []byte, clientKey string) (SaveResult, error) {
	const op = "service.plans.Save"

	if clientKey != "" {
		d, err := s.limiter.Allow(ctx, clientKey)
		if err != nil {
			return SaveResult{}, fmt.Errorf("%s:%w", op, err)
		}
		if !d.Allowed {
			return SaveResult{}, fmt.Errorf("%s:%w", op, RateLimitedError{RetryAfter: d.RetryAfter})
		}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return SaveResult{}, fmt.Errorf("%s:%w: empty body", op, ErrInvalidSnapshot)
	}

	engine, err := s.engineFor(raw)
	if err != nil {
		return SaveResult{}, fmt.Errorf("%s:%w", op, err)
	}

	data, err := snapshot.Encode(engine.Snapshot())
	if err != nil {
		return SaveResult{}, fmt.Errorf("%s:%w", op, err)
	}
	summary := engine.Summary()

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.newID()

		err = s.uow.Do(ctx, func(
			ctx context.Context,
			plans repository.PlanRepository,
			after func(uow.AfterCommit),
		) error {
			p := &domain.Plan{ID: id, Version: snapshot.CurrentVersion, Snapshot: data}
			if err := plans.Create(ctx, p); err != nil {
				return err
			}

			after(func(ctx context.Context) {
				s.afterSave(ctx, id, data, summary)
			})

			return nil
		})
		if errors.Is(err, repository.ErrConflict) {
			continue
		}
		if err != nil {
			return SaveResult{}, fmt.Errorf("%s:%w", op, err)
		}

		return SaveResult{Success: true, ID: id, URL: s.ShareURL(id)}, nil
	}

	return SaveResult{}, fmt.Errorf("%s:%w", op, ErrIDExhausted)
}

func (s *Service) afterSave(ctx context.Context, id string, data []byte, summary domain.Summary) {
	if err := s.cache.PutRaw(ctx, redisrepo.KeyPlan(id), data); err != nil {
		s.logger.Warn("plan cache warm failed", slog.String("plan_id", id), slog.String("err", err.Error()))
	}

	if s.events == nil {
		return
	}
	ev := domain.PlanSaved{
		PlanID: id,
		Tables: summary.Tables,
		Seats:  summary.TotalSeats,
		Guests: summary.Guests,
		TsUnix: time.Now().Unix(),
	}
	if err := s.events.PublishPlanSaved(ctx, ev); err != nil {
		s.logger.Warn("plan event publish failed", slog.String("plan_id", id), slog.String("err", err.Error()))
	}
}

// ShareURL is the planner link that opens plan id.
func (s *Service) ShareURL(id string) string {
	return s.cfg.BaseURL + "/?id=" + id
}

// Load returns the stored snapshot in the current format.
//
// Parameters:
//   - ctx: request-scoped context.
//   - rawID: plan id; characters outside [A-Za-z0-9_-] are dropped.
//
// Returns:
//   - json.RawMessage: the snapshot JSON.
//   - error: plans.ErrInvalidID if nothing is left of the id.
//   - error: plans.ErrPlanNotFound if there is no such plan.
func (s *Service) Load(ctx context.Context, rawID string) (json.RawMessage, error) {
	const op = "service.plans.Load"

	id := SanitizeID(rawID)
	if id == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidID)
	}

	data, err := redisrepo.Remember(
		ctx,
		s.cache,
		redisrepo.KeyPlan(id),
		func(ctx context.Context) (json.RawMessage, error) {
			return s.load(ctx, id)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return data, nil
}

func (s *Service) load(ctx context.Context, id string) (json.RawMessage, error) {
	p, err := s.plans.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	// Older rows may predate the current version.
	snap, err := snapshot.Decode(p.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("stored plan %s: %w", id, err)
	}
	data, err := snapshot.Encode(snap)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// Summary counts tables, seats and guests of a stored plan.
//
// Parameters:
//   - ctx: request-scoped context.
//   - rawID: plan id.
//
// Returns:
//   - domain.Summary: the counts.
//   - error: plans.ErrPlanNotFound if there is no such plan.
func (s *Service) Summary(ctx context.Context, rawID string) (domain.Summary, error) {
	const op = "service.plans.Summary"

	id := SanitizeID(rawID)
	if id == "" {
		return domain.Summary{}, fmt.Errorf("%s:%w", op, ErrInvalidID)
	}

	sum, err := redisrepo.Remember(
		ctx,
		s.cache,
		redisrepo.KeyPlanSummary(id),
		func(ctx context.Context) (domain.Summary, error) {
			data, err := s.Load(ctx, id)
			if err != nil {
				return domain.Summary{}, err
			}
			engine, err := s.engineFor(data)
			if err != nil {
				return domain.Summary{}, err
			}
			return engine.Summary(), nil
		},
	)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("%s:%w", op, err)
	}

	return sum, nil
}

// DefaultLayout returns the default plan for the given size and mode. The
// size is clamped to the allowed table range.
func (s *Service) DefaultLayout(ctx context.Context, tables int, mode domain.Mode) (json.RawMessage, error) {
	const op = "service.plans.DefaultLayout"

	tables = max(planner.MinTables, min(planner.MaxTables, tables))

	data, err := redisrepo.Remember(
		ctx,
		s.cache,
		redisrepo.KeyDefaultLayout(tables, string(mode)),
		func(ctx context.Context) (json.RawMessage, error) {
			engine := planner.New(s.hall)
			engine.CreateDefaultLayout(tables, mode)
			b, err := snapshot.Encode(engine.Snapshot())
			return json.RawMessage(b), err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return data, nil
}

// engineFor decodes raw and loads it into a fresh engine, which normalises
// tables, seats and assignments.
func (s *Service) engineFor(raw []byte) (*planner.Engine, error) {
	snap, err := snapshot.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	engine := planner.New(s.hall)
	if err := engine.Load(snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return engine, nil
}

// SanitizeID keeps letters, digits, '_' and '-'.
func SanitizeID(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
		if b.Len() >= maxIDLength {
			break
		}
	}
	return b.String()
}

func randomID() string {
	b := make([]byte, idBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
