package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kirinyoku/seatplan/internal/config"
	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/postgres"
	"github.com/kirinyoku/seatplan/internal/queue"
	"github.com/kirinyoku/seatplan/internal/redis"
	"github.com/kirinyoku/seatplan/internal/repository"
	filerepo "github.com/kirinyoku/seatplan/internal/repository/file"
	postgresrepo "github.com/kirinyoku/seatplan/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/seatplan/internal/repository/redis"
	"github.com/kirinyoku/seatplan/internal/service"
	"github.com/kirinyoku/seatplan/internal/service/plans"
	httpgin "github.com/kirinyoku/seatplan/internal/transport/http/gin"
	"github.com/kirinyoku/seatplan/internal/uow"
)

const (
	shutdownTimeout = 5 * time.Second
	idempotencyTTL  = 2 * time.Hour
	idempotencyLock = time.Minute
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	// listen consumes plan-saved events; nil when events are off.
	listen  func(ctx context.Context) error
	closers []func()
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	tx, reader, err := a.planStore(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	rdb, err := redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	var (
		cache   *redisrepo.PlanCache
		limiter *redisrepo.SaveLimiter
		idem    *redisrepo.SaveIdempotency
	)
	if rdb != nil {
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		cache = redisrepo.NewPlanCache(rdb, cfg.Plans.CacheTTL)
		limiter = redisrepo.NewSaveLimiter(rdb, cfg.Plans.SaveRateLimit, cfg.Plans.SaveRateWindow)
		idem = redisrepo.NewSaveIdempotency(rdb, idempotencyTTL, idempotencyLock)
	} else {
		logger.Info("redis disabled: no cache, rate limit or idempotency")
	}

	var events plans.Events
	switch cfg.Events.Backend {
	case config.EventsRedis:
		pe := redisrepo.NewPlanEvents(rdb)
		events = pe
		a.listen = func(ctx context.Context) error {
			err := pe.Subscribe(ctx, func(ctx context.Context, ev domain.PlanSaved) {
				a.logPlanSaved(ev)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	case config.EventsAMQP:
		events = queue.NewPublisher(cfg.Events.AMQPURL)
		consumer := queue.NewConsumer(cfg.Events.AMQPURL, logger)
		a.listen = func(ctx context.Context) error {
			return consumer.Consume(ctx, func(ctx context.Context, ev domain.PlanSaved) error {
				a.logPlanSaved(ev)
				return nil
			})
		}
	}

	planSvc := plans.New(tx, reader, cache, events, limiter, logger, plans.Config{
		BaseURL: cfg.Server.PublicBaseURL,
	})

	router := httpgin.NewRouter(service.NewServices(planSvc), idem, logger, httpgin.CORS(cfg.Server.CORSOrigins))

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// planStore opens the configured plan store.
func (a *App) planStore(ctx context.Context) (uow.Transactor, repository.PlanRepository, error) {
	switch a.cfg.Plans.Store {
	case config.StorePostgres:
		pool, err := postgres.New(ctx, postgres.Config{DSN: a.cfg.Postgres.DSN()})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		store := postgresrepo.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to prepare schema: %w", err)
		}
		a.logger.Info("plans stored in postgres", "host", a.cfg.Postgres.Host, "db", a.cfg.Postgres.Name)
		return store, store.Plans(), nil
	default:
		store, err := filerepo.New(a.cfg.Plans.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize plans dir: %w", err)
		}
		a.logger.Info("plans stored on disk", "dir", a.cfg.Plans.Dir)
		return store, store.Plans(), nil
	}
}

func (a *App) logPlanSaved(ev domain.PlanSaved) {
	a.logger.Info("plan saved",
		slog.String("plan_id", ev.PlanID),
		slog.Int("tables", ev.Tables),
		slog.Int("seats", ev.Seats),
		slog.Int("guests", ev.Guests),
		slog.Time("at", time.Unix(ev.TsUnix, 0)),
	)
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	if a.listen != nil {
		g.Go(func() error {
			a.logger.Info("listening for plan events", "backend", a.cfg.Events.Backend)
			return a.listen(gCtx)
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
