package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("SERVER_HOST", "")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("PLAN_STORE", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("EVENTS_BACKEND", "")
	t.Setenv("PLAN_CACHE_TTL", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9090", cfg.Server.PublicBaseURL)
	assert.Equal(t, StoreFile, cfg.Plans.Store)
	assert.Equal(t, 10*time.Minute, cfg.Plans.CacheTTL)
	assert.Equal(t, 20, cfg.Plans.SaveRateLimit)
	assert.Equal(t, EventsNone, cfg.Events.Backend)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestCORSOriginsList(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestPostgresStoreNeedsCredentials(t *testing.T) {
	t.Setenv("PLAN_STORE", "postgres")
	t.Setenv("POSTGRES_USER", "")

	_, err := New()
	assert.Error(t, err)

	t.Setenv("POSTGRES_USER", "u")
	t.Setenv("POSTGRES_PASSWORD", "p")
	t.Setenv("POSTGRES_DB", "plans")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PORT", "")
	t.Setenv("POSTGRES_SSLMODE", "")
	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/plans?sslmode=disable", cfg.Postgres.DSN())
}

func TestInvalidValues(t *testing.T) {
	t.Setenv("PLAN_STORE", "")
	t.Setenv("SERVER_PORT", "x")
	_, err := New()
	assert.Error(t, err)

	t.Setenv("SERVER_PORT", "")
	t.Setenv("EVENTS_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "")
	_, err = New()
	assert.Error(t, err)

	t.Setenv("EVENTS_BACKEND", "kafka")
	_, err = New()
	assert.Error(t, err)
}
