package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// PlanCache keeps plan JSON and values derived from plans in redis.
// Stored plans never change, so entries only expire. All methods are safe
// on a nil cache, which stores nothing.
type PlanCache struct {
	rdb   *redis.Client
	ttl   time.Duration
	group singleflight.Group
}

func NewPlanCache(rdb *redis.Client, ttl time.Duration) *PlanCache {
	return &PlanCache{rdb: rdb, ttl: ttl}
}

// Remember returns the value cached under key or loads and caches it.
// Concurrent misses for one key share a single load. Cache write failures
// are ignored; the loaded value is returned anyway.
func Remember[T any](ctx context.Context, c *PlanCache, key string, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}

	var cached T
	if hit, err := c.get(ctx, key, &cached); err != nil || hit {
		return cached, err
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		var again T
		if hit, err := c.get(ctx, key, &again); err != nil || hit {
			return again, err
		}
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		_ = c.put(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	v, _ := res.(T)
	return v, nil
}

// PutRaw stores JSON that is already encoded, e.g. a freshly saved plan.
func (c *PlanCache) PutRaw(ctx context.Context, key string, raw []byte) error {
	if c == nil {
		return nil
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

// get reports a miss for absent keys and for entries that no longer decode.
func (c *PlanCache) get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if json.Unmarshal(b, dst) != nil {
		return false, nil
	}
	return true, nil
}

func (c *PlanCache) put(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}
