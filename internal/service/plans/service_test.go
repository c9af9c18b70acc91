package plans

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/planner"
	"github.com/kirinyoku/seatplan/internal/repository/file"
	"github.com/kirinyoku/seatplan/internal/snapshot"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []domain.PlanSaved
	err    error
}

func (r *recordedEvents) PublishPlanSaved(_ context.Context, ev domain.PlanSaved) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func newService(t *testing.T, events Events, opts ...Option) *Service {
	t.Helper()
	store, err := file.New(t.TempDir())
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, store.Plans(), nil, events, nil, logger,
		Config{BaseURL: "https://plan.example.com/"}, opts...)
}

func defaultSnapshotJSON(t *testing.T, tables int) []byte {
	t.Helper()
	e := planner.New(nil)
	e.CreateDefaultLayout(tables, domain.ModeLess)
	_, err := e.AssignGuestByName("Anna", "t1_c1")
	require.NoError(t, err)
	b, err := snapshot.Encode(e.Snapshot())
	require.NoError(t, err)
	return b
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	events := &recordedEvents{}
	svc := newService(t, events)

	res, err := svc.Save(ctx, defaultSnapshotJSON(t, 6), "")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, res.ID, 12)
	assert.Equal(t, "https://plan.example.com/?id="+res.ID, res.URL)

	data, err := svc.Load(ctx, res.ID)
	require.NoError(t, err)
	snap, err := snapshot.Decode(data)
	require.NoError(t, err)
	assert.Len(t, snap.Tables, 6)
	assert.Equal(t, 6, snap.Settings.TableCount)
	assert.Equal(t, "t1_c1", snap.Guests[0].AssignedTo)

	require.Len(t, events.events, 1)
	ev := events.events[0]
	assert.Equal(t, res.ID, ev.PlanID)
	assert.Equal(t, 6, ev.Tables)
	assert.Equal(t, 1, ev.Guests)
}

func TestSaveRejectsBadInput(t *testing.T) {
	svc := newService(t, nil)

	for _, body := range []string{"", "   ", "{not json", `{"version":99}`} {
		_, err := svc.Save(context.Background(), []byte(body), "")
		assert.ErrorIs(t, err, ErrInvalidSnapshot, "body %q", body)
	}
}

func TestSaveMigratesOldSnapshots(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)
	old := `{"version":1,"tables":[{"id":"t1","number":1,"x":7.5,"y":3.4,"chairs":[]}],"settings":{"mode":"less"}}`

	res, err := svc.Save(ctx, []byte(old), "")
	require.NoError(t, err)

	data, err := svc.Load(ctx, res.ID)
	require.NoError(t, err)
	snap, err := snapshot.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, snapshot.CurrentVersion, snap.Version)
	assert.InDelta(t, 7.6, snap.Tables[0].Y, 1e-9)
	assert.NotEmpty(t, snap.Tables[0].Chairs)
}

func TestSaveRetriesTakenIDs(t *testing.T) {
	ctx := context.Background()
	ids := []string{"aaa", "aaa", "bbb"}
	n := 0
	svc := newService(t, nil, WithIDGenerator(func() string {
		id := ids[n%len(ids)]
		n++
		return id
	}))
	body := defaultSnapshotJSON(t, 4)

	first, err := svc.Save(ctx, body, "")
	require.NoError(t, err)
	second, err := svc.Save(ctx, body, "")
	require.NoError(t, err)

	assert.Equal(t, "aaa", first.ID)
	assert.Equal(t, "bbb", second.ID)
}

func TestSaveGivesUpWhenIDsRunOut(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil, WithIDGenerator(func() string { return "same" }))
	body := defaultSnapshotJSON(t, 4)

	_, err := svc.Save(ctx, body, "")
	require.NoError(t, err)
	_, err = svc.Save(ctx, body, "")
	assert.ErrorIs(t, err, ErrIDExhausted)
}

func TestEventFailureDoesNotFailSave(t *testing.T) {
	svc := newService(t, &recordedEvents{err: fmt.Errorf("broker down")})

	res, err := svc.Save(context.Background(), defaultSnapshotJSON(t, 4), "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
}

func TestLoadErrors(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Load(ctx, "../..")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = svc.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = svc.Summary(ctx, "missing")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)
	res, err := svc.Save(ctx, defaultSnapshotJSON(t, planner.DefaultTableCount), "")
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{
		Tables:           13,
		TotalSeats:       76,
		AssignedGuests:   1,
		FreeSeats:        75,
		UnassignedGuests: 0,
		Guests:           1,
	}, sum)
}

func TestDefaultLayout(t *testing.T) {
	svc := newService(t, nil)

	data, err := svc.DefaultLayout(context.Background(), 99, domain.ModeMore)
	require.NoError(t, err)

	var snap snapshot.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Len(t, snap.Tables, planner.MaxTables)
	assert.Equal(t, "more", snap.Settings.Mode)
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "abc-1_2", SanitizeID(" a/b.c-1_2?"))
	assert.Empty(t, SanitizeID("../"))
}
