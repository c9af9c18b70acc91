package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/seatplan/internal/snapshot"
)

func testSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Version: snapshot.CurrentVersion,
		Tables: []snapshot.Table{
			{ID: "t1", Number: 1, X: 8, Y: 3, GroupID: "t1", HeadSeatCount: 4, Chairs: []snapshot.Chair{}},
			{ID: "t2", Number: 2, X: 14, Y: 3, GroupID: "t2", HeadSeatCount: 4, Chairs: []snapshot.Chair{}},
		},
		Guests:   []snapshot.Guest{{ID: "g1", Name: "Anna"}},
		Settings: snapshot.Settings{Mode: "more", TableCount: 7},
	}
}

func newLocal(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "nested", "plan.json"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Save(ctx, testSnapshot()))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Settings.TableCount)
	assert.Equal(t, "more", got.Settings.Mode)
	assert.Equal(t, snapshot.CurrentVersion, got.Version)
	assert.Len(t, got.Tables, 2)
}

func TestLocalStoreIgnoresGarbage(t *testing.T) {
	s := newLocal(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o700))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	stored := map[string][]byte{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /plans", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if len(body) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"empty body"}`))
			return
		}
		stored["abc123"] = body
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(SaveResult{Success: true, ID: "abc123", URL: "http://example.test/?id=abc123"})
	})
	mux.HandleFunc("GET /plans/{id}", func(w http.ResponseWriter, r *http.Request) {
		body, ok := stored[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"plan not found"}`))
			return
		}
		_, _ = w.Write(body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGatewayShareAndLoad(t *testing.T) {
	ctx := context.Background()
	srv := fakeServer(t)
	gw := New(newLocal(t), NewRemoteClient(srv.URL+"/", nil), "")

	got, err := gw.LoadRemoteIfNeeded(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "no plan id means nothing to fetch")

	id, link, err := gw.SaveRemote(ctx, testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Equal(t, "http://example.test/?id=abc123", link)
	assert.Equal(t, "abc123", gw.PlanID())

	got, err = gw.LoadRemoteIfNeeded(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Anna", got.Guests[0].Name)
}

func TestRemoteClientNotFound(t *testing.T) {
	srv := fakeServer(t)
	c := NewRemoteClient(srv.URL, nil)

	_, err := c.LoadPlan(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestRemoteClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"disk full"}`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewRemoteClient(srv.URL, nil).SavePlan(context.Background(), testSnapshot())
	require.ErrorIs(t, err, ErrRemote)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSaveRemoteWithoutServer(t *testing.T) {
	gw := New(newLocal(t), nil, "abc")

	_, _, err := gw.SaveRemote(context.Background(), testSnapshot())
	assert.ErrorIs(t, err, ErrNoRemote)

	got, err := gw.LoadRemoteIfNeeded(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}
