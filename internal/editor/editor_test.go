package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/geometry"
	"github.com/kirinyoku/seatplan/internal/planner"
	"github.com/kirinyoku/seatplan/internal/snapshot"
)

type fakeStore struct {
	mu        sync.Mutex
	local     *snapshot.Snapshot
	remote    *snapshot.Snapshot
	remoteErr error
	shareErr  error
	saves     int
}

func (f *fakeStore) SaveLocal(_ context.Context, s *snapshot.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.local = s.Clone()
	f.saves++
	return nil
}

func (f *fakeStore) LoadLocal(context.Context) (*snapshot.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.local == nil {
		return nil, nil
	}
	return f.local.Clone(), nil
}

func (f *fakeStore) SaveRemote(_ context.Context, s *snapshot.Snapshot) (string, string, error) {
	if f.shareErr != nil {
		return "", "", f.shareErr
	}
	f.remote = s.Clone()
	return "abc123", "http://example.test/?id=abc123", nil
}

func (f *fakeStore) LoadRemoteIfNeeded(context.Context) (*snapshot.Snapshot, error) {
	return f.remote, f.remoteErr
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func newEngine() *planner.Engine {
	n := 0
	return planner.New(nil, planner.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("g%d", n)
	}))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openDefault(t *testing.T) (*Session, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	s := Open(context.Background(), newEngine(), store, quietLogger())
	require.Equal(t, SourceDefault, s.Source())
	return s, store
}

func TestOpenPrefersRemoteThenLocal(t *testing.T) {
	ctx := context.Background()

	small := newEngine()
	small.CreateDefaultLayout(5, domain.ModeLess)
	big := newEngine()
	big.CreateDefaultLayout(8, domain.ModeMore)

	store := &fakeStore{local: small.Snapshot(), remote: big.Snapshot()}
	s := Open(ctx, newEngine(), store, quietLogger())
	assert.Equal(t, SourceRemote, s.Source())
	assert.Len(t, s.Tables(), 8)
	assert.Equal(t, domain.ModeMore, s.Mode())

	store = &fakeStore{local: small.Snapshot(), remoteErr: errors.New("offline")}
	s = Open(ctx, newEngine(), store, quietLogger())
	assert.Equal(t, SourceLocal, s.Source())
	assert.Len(t, s.Tables(), 5)
}

func TestOpenFallsBackToDefault(t *testing.T) {
	s, _ := openDefault(t)
	assert.Len(t, s.Tables(), planner.DefaultTableCount)
	assert.Equal(t, domain.ModeLess, s.Mode())
}

func TestUndoRedoAcrossChanges(t *testing.T) {
	ctx := context.Background()
	s, store := openDefault(t)
	initial := s.Snapshot()

	g, err := s.AddGuest(ctx, "Anna")
	require.NoError(t, err)
	require.NoError(t, s.AssignGuest(ctx, g.ID, "t1_c1"))
	afterAssign := s.Snapshot()
	assert.Equal(t, 2, store.saveCount())

	ok, err := s.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, s.Summary().UnassignedGuests)

	ok, err = s.Redo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, afterAssign, s.Snapshot())

	for s.CanUndo() {
		_, err = s.Undo(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, initial, s.Snapshot())
	assert.Equal(t, initial, store.local)
}

func TestRejectedChangesAreNotRecorded(t *testing.T) {
	ctx := context.Background()
	s, store := openDefault(t)
	_, err := s.AssignGuestByName(ctx, "Anna", "t5_c1")
	require.NoError(t, err)
	saves := store.saveCount()
	before := s.Snapshot()

	err = s.DeleteTable(ctx, "t5", false)
	_, needs := planner.NeedsConfirmation(err)
	require.True(t, needs)

	assert.ErrorIs(t, s.AssignGuest(ctx, "nobody", "t1_c1"), planner.ErrGuestNotFound)
	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, saves, store.saveCount())

	ok, err := s.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, s.Guests())
}

func TestNoOpChangesAreNotRecorded(t *testing.T) {
	ctx := context.Background()
	s, store := openDefault(t)

	_, err := s.AddGuest(ctx, "Anna")
	require.NoError(t, err)
	saves := store.saveCount()

	require.NoError(t, s.SetMode(ctx, domain.ModeLess))
	require.NoError(t, s.SetTableCount(ctx, planner.DefaultTableCount, false))
	assert.Equal(t, saves, store.saveCount())

	ok, err := s.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, s.Guests(), "one undo reverts the last real change")
}

func TestResetKeepsSizeAndMode(t *testing.T) {
	ctx := context.Background()
	s, _ := openDefault(t)
	require.NoError(t, s.SetTableCount(ctx, 6, false))
	require.NoError(t, s.SetMode(ctx, domain.ModeMore))
	_, err := s.AssignGuestByName(ctx, "Anna", s.Tables()[1].Chairs[0].ID)
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx))

	assert.Len(t, s.Tables(), 6)
	assert.Equal(t, domain.ModeMore, s.Mode())
	sum := s.Summary()
	assert.Equal(t, 1, sum.Guests)
	assert.Equal(t, 1, sum.UnassignedGuests)

	ok, err := s.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, s.Summary().UnassignedGuests)
}

func TestShare(t *testing.T) {
	ctx := context.Background()
	s, store := openDefault(t)

	id, link, err := s.Share(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Contains(t, link, "abc123")
	assert.Equal(t, "abc123", s.PlanID())
	assert.Equal(t, s.Snapshot(), store.remote)

	store.shareErr = errors.New("boom")
	before := s.Snapshot()
	_, _, err = s.Share(ctx)
	require.Error(t, err)
	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, "abc123", s.PlanID())
}

func TestDragIsRecordedOnce(t *testing.T) {
	ctx := context.Background()
	s, _ := openDefault(t)
	start := s.Snapshot()

	require.NoError(t, s.BeginDrag([]string{"t2"}, geometry.Point{}))
	for _, x := range []float64{0.1, 0.2, 0.3} {
		_, err := s.UpdateDrag(geometry.Point{X: x})
		require.NoError(t, err)
	}
	require.NoError(t, s.CommitDrag(ctx))

	ok, err := s.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, start, s.Snapshot())
}

func TestRunAutoSave(t *testing.T) {
	s, store := openDefault(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.RunAutoSave(ctx, 5*time.Millisecond) }()

	assert.Eventually(t, func() bool { return store.saveCount() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
