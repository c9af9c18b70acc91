package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "seatplan:v1:plan:abc", KeyPlan("abc"))
	assert.Equal(t, "seatplan:v1:plan:abc:summary", KeyPlanSummary("abc"))
	assert.Equal(t, "seatplan:v1:layout:default:13:less", KeyDefaultLayout(13, "less"))
	assert.Equal(t, "seatplan:v1:idem:save:k1", KeyIdemSave("k1"))
	assert.Equal(t, "seatplan:v1:rl:save:ip:1.2.3.4", KeyRateLimit("save", "ip:1.2.3.4"))
	assert.Equal(t, "seatplan:v1:plans:saved", ChannelPlanSaved())
}

func TestNilCacheLoadsEveryTime(t *testing.T) {
	var c *PlanCache
	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 2; i++ {
		v, err := Remember(context.Background(), c, "k", load)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 2, calls)
	assert.NoError(t, c.PutRaw(context.Background(), "k", []byte(`{}`)))
}

func TestNilCachePropagatesLoaderError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Remember(context.Background(), nil, "k", func(context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestDisabledLimiterAllows(t *testing.T) {
	var l *SaveLimiter
	d, err := l.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	l = NewSaveLimiter(nil, 0, time.Minute)
	d, err = l.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}
