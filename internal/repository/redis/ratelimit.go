package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// saveWindowScript counts plan saves per client in a sorted set scored by
// time. It returns {allowed, saves in window, retry after ms}.
//
// KEYS[1] = bucket key
// ARGV[1] = now (ms), ARGV[2] = window (ms), ARGV[3] = max saves, ARGV[4] = hit id
const saveWindowScript = `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, now - window)
redis.call('ZADD', KEYS[1], 'NX', now, ARGV[4])
redis.call('PEXPIRE', KEYS[1], window)
local saves = redis.call('ZCARD', KEYS[1])

if saves <= max then
  return {1, saves, 0}
end
local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
local wait = window - (now - (tonumber(oldest[2]) or now))
if wait < 0 then wait = 0 end
return {0, saves, wait}
`

// Decision is the outcome of one save attempt against the limiter.
type Decision struct {
	Allowed    bool
	Saves      int64
	RetryAfter time.Duration
}

// SaveLimiter caps how many plans one client may share per window.
// A nil limiter, or one with a non-positive max, allows everything.
type SaveLimiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
	script *redis.Script
}

func NewSaveLimiter(rdb *redis.Client, max int, window time.Duration) *SaveLimiter {
	return &SaveLimiter{
		rdb:    rdb,
		max:    max,
		window: window,
		script: redis.NewScript(saveWindowScript),
	}
}

// Allow records one save by client. When the window is full the save is
// still counted and RetryAfter tells when the oldest one expires.
func (l *SaveLimiter) Allow(ctx context.Context, client string) (Decision, error) {
	const op = "repository.redis.SaveLimiter.Allow"

	if l == nil || l.max <= 0 {
		return Decision{Allowed: true}, nil
	}

	now := time.Now().UnixMilli()
	res, err := l.script.Run(ctx, l.rdb,
		[]string{KeyRateLimit("save", client)},
		now, l.window.Milliseconds(), l.max, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("%s:%w", op, err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("%s: unexpected script result %v", op, res)
	}

	return Decision{
		Allowed:    res[0] == 1,
		Saves:      res[1],
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}
