package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/relief/pkg/cache"
	"github.com/matzehuels/relief/pkg/heightmap"
	"github.com/matzehuels/relief/pkg/heightmap/transform"
	gridio "github.com/matzehuels/relief/pkg/io"
	"github.com/matzehuels/relief/pkg/observability"
	"github.com/matzehuels/relief/pkg/pipeline"
	"github.com/matzehuels/relief/pkg/stats"
)

const gridJSON = `{"values": [[0, 1], [2, 3]]}`

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(cfg).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func decodeError(t *testing.T, body []byte) errorResponse {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(body, &e), "body: %s", body)
	return e
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestRequestIDPropagates(t *testing.T) {
	srv := newTestServer(t, Config{})
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestListOperations(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, err := http.Get(srv.URL + "/v1/operations")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Operations []struct {
			Name  string `json:"name"`
			Arity int    `json:"arity"`
		} `json:"operations"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Operations, len(transform.Names))
	assert.Equal(t, "merge", body.Operations[0].Name)
	assert.Equal(t, 2, body.Operations[0].Arity)
}

func TestTransform(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, body := post(t, srv, "/v1/transform/map", `{"grid": `+gridJSON+`, "params": {"min": 0, "max": 30}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	var out TransformResponse
	require.NoError(t, json.Unmarshal(body, &out))
	g, err := gridio.UnmarshalGrid(out.Grid)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 10}, {20, 30}}, g.Rows())
}

func TestTransformMerge(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, body := post(t, srv, "/v1/transform/merge",
		`{"grid": {"values": [[0, 10]]}, "with": {"values": [[10, 10]]}, "params": {"weight": 0.5}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	var out TransformResponse
	require.NoError(t, json.Unmarshal(body, &out))
	g, err := gridio.UnmarshalGrid(out.Grid)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{5, 10}}, g.Rows())
}

func TestTransformErrors(t *testing.T) {
	srv := newTestServer(t, Config{})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown op", "/v1/transform/erode", `{"grid": ` + gridJSON + `}`, 400, "INVALID_OPERATION"},
		{"foreign param", "/v1/transform/ridge", `{"grid": ` + gridJSON + `, "params": {"power": 2}}`, 400, "INVALID_INPUT"},
		{"missing grid", "/v1/transform/ridge", `{}`, 400, "INVALID_INPUT"},
		{"jagged grid", "/v1/transform/ridge", `{"grid": {"values": [[1, 2], [3]]}}`, 400, "INVALID_GRID"},
		{"malformed body", "/v1/transform/ridge", `{"grid":`, 400, "INVALID_INPUT"},
		{"unknown field", "/v1/transform/ridge", `{"grid": ` + gridJSON + `, "extra": 1}`, 400, "INVALID_INPUT"},
		{"weight out of range", "/v1/transform/merge", `{"grid": ` + gridJSON + `, "with": ` + gridJSON + `, "params": {"weight": 2}}`, 422, "OUT_OF_RANGE"},
		{"shape mismatch", "/v1/transform/merge", `{"grid": ` + gridJSON + `, "with": {"values": [[1]]}}`, 422, "SHAPE_MISMATCH"},
		{"empty range", "/v1/transform/map", `{"grid": ` + gridJSON + `, "params": {"min": 1, "max": 1}}`, 422, "OUT_OF_RANGE"},
		{"merge without with", "/v1/transform/merge", `{"grid": ` + gridJSON + `}`, 400, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, srv, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, "body: %s", body)
			assert.Equal(t, tt.code, decodeError(t, body).Code)
		})
	}
}

func TestRunRecipe(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	srv := newTestServer(t, Config{Runner: pipeline.NewRunner(fc, nil, nil)})

	body := `{
		"recipe": {
			"name": "demo",
			"inputs": ["base"],
			"steps": [
				{"op": "map", "min": 0, "max": 1, "as": "unit"},
				{"op": "curve", "power": 2}
			]
		},
		"inputs": {"base": ` + gridJSON + `},
		"formats": ["png"]
	}`

	resp, raw := post(t, srv, "/v1/recipes/run", body)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", raw)

	var out RunResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, "demo", out.Recipe)
	assert.Equal(t, 2, out.Stats.Steps)
	assert.Equal(t, 2, out.Stats.CacheMisses)
	assert.Contains(t, out.Named, "unit")
	assert.NotContains(t, out.Named, "base")
	assert.True(t, bytes.HasPrefix(out.Artifacts["png"], []byte("\x89PNG")))

	g, err := gridio.UnmarshalGrid(out.Output)
	require.NoError(t, err)
	base, _ := heightmap.New([][]float32{{0, 1}, {2, 3}})
	unit, _ := transform.Map(base, 0, 1)
	assert.True(t, g.ApproxEqual(transform.Curve(unit, 2), 1e-6))

	_, raw = post(t, srv, "/v1/recipes/run", body)
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 2, out.Stats.CacheHits)
}

func TestRunRecipeErrors(t *testing.T) {
	srv := newTestServer(t, Config{})

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"no recipe", `{"inputs": {}}`, 400, "INVALID_RECIPE"},
		{"invalid recipe", `{"recipe": {"inputs": ["a"], "steps": []}}`, 400, "INVALID_RECIPE"},
		{"unknown recipe key", `{"recipe": {"inputs": ["a"], "steps": [{"op": "ridge", "strenght": 1}]}}`, 400, "INVALID_FORMAT"},
		{"missing input", `{"recipe": {"inputs": ["a"], "steps": [{"op": "ridge"}]}, "inputs": {}}`, 404, "NOT_FOUND"},
		{"path refs disabled", `{"recipe": {"inputs": ["a"], "steps": [{"op": "ridge"}]}, "inputs": {"a": {"path": "a.json"}}}`, 400, "INVALID_INPUT"},
		{"bad format", `{"recipe": {"inputs": ["a"], "steps": [{"op": "ridge"}]}, "inputs": {"a": ` + gridJSON + `}, "formats": ["gif"]}`, 400, "UNSUPPORTED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, srv, "/v1/recipes/run", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, "body: %s", body)
			assert.Equal(t, tt.code, decodeError(t, body).Code)
		})
	}
}

func TestRunRecipePathInputs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "terrain"), 0755))
	base, _ := heightmap.New([][]float32{{1, 2}, {3, 4}})
	require.NoError(t, gridio.ExportFile(base, filepath.Join(dir, "terrain", "base.csv")))

	srv := newTestServer(t, Config{DataDir: dir})
	recipeJSON := `{"inputs": ["a"], "steps": [{"op": "ridge"}]}`

	resp, body := post(t, srv, "/v1/recipes/run",
		`{"recipe": `+recipeJSON+`, "inputs": {"a": {"path": "terrain/base.csv"}}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	resp, body = post(t, srv, "/v1/recipes/run",
		`{"recipe": `+recipeJSON+`, "inputs": {"a": {"path": "../etc/passwd"}}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_PATH", decodeError(t, body).Code)

	resp, body = post(t, srv, "/v1/recipes/run",
		`{"recipe": `+recipeJSON+`, "inputs": {"a": {"path": "terrain/missing.json"}}}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "FILE_NOT_FOUND", decodeError(t, body).Code)
}

func TestStats(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, body := post(t, srv, "/v1/stats", `{"grid": `+gridJSON+`, "bins": 3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

	var s stats.Summary
	require.NoError(t, json.Unmarshal(body, &s))
	assert.Equal(t, 4, s.Cells)
	assert.Equal(t, 3.0, s.Max)
	assert.Len(t, s.Histogram, 3)
}

func TestBodyLimit(t *testing.T) {
	srv := newTestServer(t, Config{MaxBodyBytes: 64})
	resp, body := post(t, srv, "/v1/stats", `{"grid": {"values": [[`+strings.Repeat("1,", 100)+`1]]}}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode, "body: %s", body)
}

func TestNotFoundAndMethod(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := http.Get(srv.URL + "/v2/nothing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/v1/recipes/run")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRecoverer(t *testing.T) {
	var errs atomic.Int32
	observability.SetHTTPHooks(&errorCounter{n: &errs})
	t.Cleanup(observability.Reset)

	s := NewServer(Config{})
	h := requestID(s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rec.Body.Bytes()).Code)
	assert.EqualValues(t, 1, errs.Load())
}

type errorCounter struct {
	observability.NoopHTTPHooks
	n *atomic.Int32
}

func (e *errorCounter) OnError(context.Context, string, string, error) { e.n.Add(1) }

func TestHTTPHooksSeeRoutePattern(t *testing.T) {
	h := &routeHooks{}
	observability.SetHTTPHooks(h)
	t.Cleanup(observability.Reset)

	srv := newTestServer(t, Config{})
	post(t, srv, "/v1/transform/ridge", `{"grid": `+gridJSON+`}`)

	route, _ := h.route.Load().(string)
	assert.Equal(t, "/v1/transform/{op}", route)
	assert.EqualValues(t, http.StatusOK, h.status.Load())
}

type routeHooks struct {
	observability.NoopHTTPHooks
	route  atomic.Value
	status atomic.Int32
}

func (h *routeHooks) OnResponse(_ context.Context, _, route string, status int, _ time.Duration) {
	h.route.Store(route)
	h.status.Store(int32(status))
}

func TestListenAndServeShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(Config{}).ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}
