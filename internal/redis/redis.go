package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	clientName  = "seatplan"
	pingTimeout = 3 * time.Second
)

type Config struct {
	// Addr is host:port. Leave it empty to run without redis.
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a redis server is configured.
func (c Config) Enabled() bool { return c.Addr != "" }

// New connects the client shared by the plan cache, the save limiter,
// idempotency keys and redis plan events. It returns a nil client when cfg
// is not enabled, which all of those treat as "pass through".
func New(ctx context.Context, cfg Config) (*redis.Client, error) {
	const op = "redis.New"

	if !cfg.Enabled() {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   clientName,
		DialTimeout:  pingTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: ping %s: %w", op, cfg.Addr, err)
	}

	return client, nil
}
