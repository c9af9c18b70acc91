package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Claim is what Begin found under an Idempotency-Key.
type Claim int

const (
	// ClaimAcquired means the caller owns the key and must Finish or Abort.
	ClaimAcquired Claim = iota
	// ClaimReplay means an earlier request finished; its response is returned.
	ClaimReplay
	// ClaimBusy means an earlier request with the same key is still running.
	ClaimBusy
)

const (
	statePending = "pending"
	donePrefix   = "done:"
)

// SaveIdempotency remembers plan-save responses by Idempotency-Key so a
// retried save returns the same share link instead of a second plan.
type SaveIdempotency struct {
	rdb     *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

func NewSaveIdempotency(rdb *redis.Client, ttl, lockTTL time.Duration) *SaveIdempotency {
	return &SaveIdempotency{rdb: rdb, ttl: ttl, lockTTL: lockTTL}
}

// Begin claims key for a new save, or reports the stored response of an
// earlier one.
func (s *SaveIdempotency) Begin(ctx context.Context, key string) (Claim, []byte, error) {
	const op = "repository.redis.SaveIdempotency.Begin"

	k := KeyIdemSave(key)
	ok, err := s.rdb.SetNX(ctx, k, statePending, s.lockTTL).Result()
	if err != nil {
		return ClaimBusy, nil, fmt.Errorf("%s:%w", op, err)
	}
	if ok {
		return ClaimAcquired, nil, nil
	}

	v, err := s.rdb.Get(ctx, k).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// expired between the two calls
		return ClaimBusy, nil, nil
	case err != nil:
		return ClaimBusy, nil, fmt.Errorf("%s:%w", op, err)
	}
	if body, done := strings.CutPrefix(v, donePrefix); done {
		return ClaimReplay, []byte(body), nil
	}
	return ClaimBusy, nil, nil
}

// Finish stores the response of a claimed save.
func (s *SaveIdempotency) Finish(ctx context.Context, key string, response []byte) error {
	return s.rdb.Set(ctx, KeyIdemSave(key), donePrefix+string(response), s.ttl).Err()
}

// Abort frees a claimed key after a failed save so it can be retried.
func (s *SaveIdempotency) Abort(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, KeyIdemSave(key)).Err()
}
