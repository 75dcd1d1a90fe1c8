package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samruddhi/pipecut/internal/db"
	"github.com/samruddhi/pipecut/internal/health"
	"github.com/samruddhi/pipecut/internal/services"
	"github.com/samruddhi/pipecut/internal/store"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T, opts Options) (*Server, *store.LeftoverStore) {
	t.Helper()
	ctx := context.Background()

	sel := db.NewSelector(db.LocalTarget(filepath.Join(t.TempDir(), "database.db")))
	t.Cleanup(func() { sel.Close() })

	database, err := sel.Get(ctx)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(ctx, database))

	leftovers := store.NewLeftoverStore(database)
	srv := NewServer(services.NewPlannerService(leftovers), services.NewStatsService(leftovers),
		health.NewMonitor(database), database.Target(), opts)
	return srv, leftovers
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rec, env := doJSON(t, srv, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var st health.Status
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, db.KindLocal, st.Backend)
	assert.True(t, st.Healthy)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestLeftoverCRUD(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rec, env := doJSON(t, srv, http.MethodPost, "/api/v1/leftovers", map[string]float64{"length": 640})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotZero(t, created.ID)

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/v1/leftovers", map[string]float64{"length": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = doJSON(t, srv, http.MethodGet, "/api/v1/leftovers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []struct {
		ID     int64   `json:"id"`
		Length float64 `json:"length"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, 640.0, list[0].Length)

	rec, _ = doJSON(t, srv, http.MethodDelete, "/api/v1/leftovers/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, srv, http.MethodDelete, "/api/v1/leftovers/"+jsonInt(created.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = doJSON(t, srv, http.MethodDelete, "/api/v1/leftovers/"+jsonInt(created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestClearLeftovers(t *testing.T) {
	srv, leftovers := newTestServer(t, Options{})
	require.NoError(t, leftovers.InsertBatch(context.Background(), []float64{100, 200}))

	rec, env := doJSON(t, srv, http.MethodDelete, "/api/v1/leftovers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":2}`, string(env.Data))
}

func TestPlanSingleEndpoint(t *testing.T) {
	srv, leftovers := newTestServer(t, Options{})

	rec, env := doJSON(t, srv, http.MethodPost, "/api/v1/plans/single", map[string]interface{}{
		"raw_length": 6000, "cut_length": 1000, "quantity": 5, "dry_run": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var plan struct {
		PiecesProduced int      `json:"pieces_produced"`
		SuggestedRaw   *float64 `json:"suggested_raw"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	assert.Equal(t, 5, plan.PiecesProduced)
	require.NotNil(t, plan.SuggestedRaw)
	assert.Equal(t, 985.0, *plan.SuggestedRaw)

	n, err := leftovers.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "dry run must not touch inventory")

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/v1/plans/single", map[string]interface{}{
		"raw_length": 6000, "cut_length": 0, "quantity": 5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanMultiEndpoint(t *testing.T) {
	srv, leftovers := newTestServer(t, Options{})

	rec, env := doJSON(t, srv, http.MethodPost, "/api/v1/plans/multi", map[string]interface{}{
		"cuts": []map[string]interface{}{{"length": 868, "quantity": 3}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var plan struct {
		TotalPipes int     `json:"total_pipes"`
		TotalScrap float64 `json:"total_scrap"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	assert.Equal(t, 1, plan.TotalPipes)
	assert.Equal(t, 987.0, plan.TotalScrap)

	n, err := leftovers.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/v1/plans/multi", map[string]interface{}{
		"cuts": []map[string]interface{}{{"length": 5000, "quantity": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/v1/plans/multi", map[string]interface{}{"cuts": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, Options{RateLimit: 0.001, RateBurst: 1})

	rec, _ := doJSON(t, srv, http.MethodGet, "/api/v1/leftovers", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := doJSON(t, srv, http.MethodGet, "/api/v1/leftovers", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, env.Success)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func postForm(srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexPage(t *testing.T) {
	srv, leftovers := newTestServer(t, Options{})
	require.NoError(t, leftovers.InsertBatch(context.Background(), []float64{50, 1234.5}))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?raw_length=65000", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `value="65000"`)
	assert.Contains(t, body, "1234.50")
	assert.Contains(t, body, "Storage: local")
}

func TestIndexSingleForm(t *testing.T) {
	srv, leftovers := newTestServer(t, Options{})

	rec := postForm(srv, "/", url.Values{
		"raw_length":        {"6000"},
		"cut_length":        {"1000"},
		"quantity_required": {"5"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Raw pipe (6000.00 mm)")
	assert.Contains(t, rec.Body.String(), "Use 985.00 mm")

	all, err := leftovers.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 985.0, all[0].Length)
}

func TestIndexMultiForm(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rec := postForm(srv, "/", url.Values{
		"multi_submit":     {"1"},
		"multi_cut_length": {"868", "", "abc"},
		"multi_quantity":   {"3", "", "2"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "868, 868, 868")
	assert.Contains(t, rec.Body.String(), "Last pipe scrap exceeds")
}

func TestIndexClearForm(t *testing.T) {
	srv, leftovers := newTestServer(t, Options{})
	require.NoError(t, leftovers.InsertBatch(context.Background(), []float64{700}))

	rec := postForm(srv, "/", url.Values{"clear_inventory": {"1"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	n, err := leftovers.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestParseMultiForm(t *testing.T) {
	reqs := parseMultiForm([]string{"868.456", "0", "x", "500"}, []string{"2", "4", "1"})
	require.Len(t, reqs, 1)
	assert.Equal(t, 868.46, reqs[0].Length)
	assert.Equal(t, 2, reqs[0].Quantity)
}

func TestStatsEndpoint(t *testing.T) {
	srv, leftovers := newTestServer(t, Options{})
	require.NoError(t, leftovers.InsertBatch(context.Background(), []float64{200, 987}))

	rec, env := doJSON(t, srv, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":2,"total_length":1187,"longest":987,"shortest":200,"usable":1,"not_usable":1}`, string(env.Data))
}

func TestPlansRejectOutOfRangeInput(t *testing.T) {
	srv, leftovers := newTestServer(t, Options{})

	rec, env := doJSON(t, srv, http.MethodPost, "/api/v1/plans/single", map[string]interface{}{
		"raw_length": 1e307, "cut_length": 1000, "quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/v1/plans/single", map[string]interface{}{
		"raw_length": 6000, "cut_length": 10, "quantity": 20000,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/v1/plans/multi", map[string]interface{}{
		"cuts": []map[string]interface{}{{"length": 10, "quantity": 20000}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/v1/plans/multi", map[string]interface{}{
		"cuts": []map[string]interface{}{{"length": 10, "quantity": 6000}, {"length": 20, "quantity": 6000}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/v1/leftovers", map[string]float64{"length": 2e6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	n, err := leftovers.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	rec, env = doJSON(t, srv, http.MethodGet, "/api/v1/leftovers", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

func TestIndexFormsRejectOutOfRangeInput(t *testing.T) {
	srv, leftovers := newTestServer(t, Options{})

	rec := postForm(srv, "/", url.Values{
		"raw_length":        {"Inf"},
		"cut_length":        {"1000"},
		"quantity_required": {"1"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postForm(srv, "/", url.Values{
		"multi_submit":     {"1"},
		"multi_cut_length": {"500"},
		"multi_quantity":   {"20000"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postForm(srv, "/", url.Values{
		"multi_submit":     {"1"},
		"multi_cut_length": {"1e307"},
		"multi_quantity":   {"1"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	n, err := leftovers.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
