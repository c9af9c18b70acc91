package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/repository"
)

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	p := &domain.Plan{ID: "abc123", Version: 4, Snapshot: []byte(`{"version":4}`)}
	require.NoError(t, s.Plans().Create(ctx, p))
	assert.False(t, p.CreatedAt.IsZero())
	assert.FileExists(t, filepath.Join(dir, "plan_abc123.json"))

	got, err := s.Plans().Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, `{"version":4}`, string(got.Snapshot))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestCreateConflict(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	err = s.InTx(ctx, func(ctx context.Context, plans repository.PlanRepository) error {
		require.NoError(t, plans.Create(ctx, &domain.Plan{ID: "x", Snapshot: []byte(`{}`)}))
		return plans.Create(ctx, &domain.Plan{ID: "x", Snapshot: []byte(`{"a":1}`)})
	})
	assert.ErrorIs(t, err, repository.ErrConflict)

	got, err := s.Plans().Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got.Snapshot))
}

func TestGetRejectsUnknownAndUnsafeIDs(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"missing", "../etc/passwd", ""} {
		_, err := s.Plans().Get(context.Background(), id)
		assert.ErrorIs(t, err, repository.ErrNotFound, id)
	}
}
