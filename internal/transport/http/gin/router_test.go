package httpgin

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/planner"
	"github.com/kirinyoku/seatplan/internal/repository/file"
	"github.com/kirinyoku/seatplan/internal/service"
	"github.com/kirinyoku/seatplan/internal/service/plans"
	"github.com/kirinyoku/seatplan/internal/snapshot"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := file.New(t.TempDir())
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := plans.New(store, store.Plans(), nil, nil, nil, logger, plans.Config{BaseURL: "http://planner.test"})

	return NewRouter(service.NewServices(svc), nil, logger)
}

func do(r http.Handler, method, target, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func planBody(t *testing.T) string {
	t.Helper()
	e := planner.New(nil)
	e.CreateDefaultLayout(5, domain.ModeMore)
	b, err := snapshot.Encode(e.Snapshot())
	require.NoError(t, err)
	return string(b)
}

func TestSaveThenLoad(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/plans", planBody(t), "Content-Type", "application/json")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res SavePlanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "http://planner.test/?id="+res.ID, res.URL)

	w = do(r, http.MethodGet, "/plans/"+res.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	assert.NotEmpty(t, etag)
	assert.Equal(t, "public, max-age=60, immutable", w.Header().Get("Cache-Control"))
	assert.False(t, strings.HasPrefix(etag, "W/"))

	snap, err := snapshot.Decode(w.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, snap.Tables, 5)
	assert.Equal(t, "more", snap.Settings.Mode)

	w = do(r, http.MethodGet, "/plans/"+res.ID, "", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = do(r, http.MethodGet, "/load?id="+res.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLegacySaveRoute(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/save", planBody(t))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSaveRejectsInvalidBody(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/plans", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/plans", "{oops")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var res ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.Success)
	assert.Equal(t, "invalid snapshot", res.Error)
}

func TestLoadErrors(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/plans/nope", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/load", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/load?id=..%2F", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/plans/nope/summary", "").Code)
}

func TestPlanSummary(t *testing.T) {
	r := newTestRouter(t)
	w := do(r, http.MethodPost, "/plans", planBody(t))
	require.Equal(t, http.StatusCreated, w.Code)
	var res SavePlanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))

	w = do(r, http.MethodGet, "/plans/"+res.ID+"/summary", "")
	require.Equal(t, http.StatusOK, w.Code)

	var sum domain.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.Equal(t, 5, sum.Tables)
	assert.Equal(t, sum.TotalSeats, sum.FreeSeats)
	assert.True(t, strings.HasPrefix(w.Header().Get("ETag"), "W/"))
}

func TestDefaultLayout(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/layouts/default?tables=6&mode=more", "")
	require.Equal(t, http.StatusOK, w.Code)

	snap, err := snapshot.Decode(w.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, snap.Tables, 6)
	assert.Equal(t, "more", snap.Settings.Mode)

	w = do(r, http.MethodGet, "/layouts/default?tables=abc", "")
	require.Equal(t, http.StatusOK, w.Code)
	snap, err = snapshot.Decode(w.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, snap.Tables, planner.DefaultTableCount)
}

func TestHealthAndRequestID(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/healthz", "", "X-Request-ID", "req-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

	w = do(r, http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(r, http.MethodGet, "/healthz", "", "X-Request-ID", "bad id\r\n")
	assert.NotEqual(t, "bad id", w.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://plan.example"}))
	r.GET("/plans/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/plans/x", "", "Origin", "https://plan.example")
	assert.Equal(t, "https://plan.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "/plans/x", "", "Origin", "https://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestETagMatching(t *testing.T) {
	tag := etagFor([]byte(`{"a":1}`), true)
	assert.True(t, etagMatches(tag, tag))
	assert.True(t, etagMatches(`"other", W/`+tag, tag))
	assert.True(t, etagMatches("*", tag))
	assert.False(t, etagMatches("", tag))
	assert.False(t, etagMatches(etagFor([]byte(`{"a":2}`), true), tag))
}
