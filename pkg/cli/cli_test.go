package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/holocron-dev/holocron/pkg/config"
	"github.com/holocron-dev/holocron/pkg/metrics"
	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/swapi"
	"github.com/holocron-dev/holocron/pkg/testhelpers"
)

func passthrough(next http.HandlerFunc) http.HandlerFunc { return next }

var noScopes = scopes{rest: passthrough, graphql: passthrough}

func testConfig() *config.Config {
	return &config.Config{
		Version:    "1.2.3",
		APIPrefix:  "/api/starwars",
		Pagination: config.PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100},
		Metrics:    config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func memStack(t *testing.T) (*testhelpers.MemStore, *stack) {
	t.Helper()
	mem := testhelpers.NewMemStore()
	s := store{
		planets: mem.Planets(),
		films:   mem.Films(),
		people:  mem.People(),
		species: mem.Species(),
		tx:      mem.WithTx,
	}
	return mem, newStack(s, zaptest.NewLogger(t))
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	h.ServeHTTP(rec, req)
	return rec
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCommand("1.2.3")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--config", filepath.Join(t.TempDir(), "missing.yaml")})

	require.NoError(t, root.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "holocron 1.2.3 ("), out.String())
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("swapi:\n  base_url: not-a-url\n"), 0o600))

	root := NewRootCommand("test")
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"migrate", "--config", path})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand("test")

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "populate", "migrate", "version"})

	populate, _, err := root.Find([]string{"populate"})
	require.NoError(t, err)
	for _, flag := range []string{"force", "fixture", "cache", "json"} {
		assert.NotNil(t, populate.Flags().Lookup(flag), flag)
	}
}

func TestNewHandler_MountsEverySurface(t *testing.T) {
	_, s := memStack(t)
	m, err := metrics.New()
	require.NoError(t, err)

	h, err := newHandler(testConfig(), s, noScopes, nil, m, zaptest.NewLogger(t))
	require.NoError(t, err)

	rec := serve(h, http.MethodGet, "/api/starwars/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"1.2.3"`)

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/characters/", "").Code)

	rec = serve(h, http.MethodPost, "/api/starwars/graphql", `{"query":"{ stats { totalPeople totalFilms } }"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"stats":{"totalPeople":0,"totalFilms":0}}}`, rec.Body.String())

	rec = serve(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(),
		`holocron_http_requests_total{method="GET",route="GET /api/starwars/status",status="200"} 1`)
	assert.Contains(t, rec.Body.String(),
		`holocron_http_requests_total{method="POST",route="POST /api/starwars/graphql",status="200"} 1`)
	assert.NotContains(t, rec.Body.String(), "holocron_import_")
}

func TestNewHandler_MetricsDisabled(t *testing.T) {
	_, s := memStack(t)
	cfg := testConfig()
	cfg.Metrics.Enabled = false

	m, err := metrics.New()
	require.NoError(t, err)

	h, err := newHandler(cfg, s, noScopes, nil, m, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/metrics", "").Code)

	h, err = newHandler(testConfig(), s, noScopes, nil, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/metrics", "").Code)
}

func TestNewHandler_ServesStoredData(t *testing.T) {
	mem, s := memStack(t)
	ctx := context.Background()
	require.NoError(t, mem.Planets().Create(ctx, &models.Planet{Name: "Hoth"}))

	h, err := newHandler(testConfig(), s, noScopes, nil, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	rec := serve(h, http.MethodGet, "/api/starwars/planets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Hoth"`)

	rec = serve(h, http.MethodGet, "/graphql?query="+`%7B%20stats%20%7B%20totalPlanets%20%7D%20%7D`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"stats":{"totalPlanets":1}}}`, rec.Body.String())
}

func TestNewSource_FixtureWithMemoryCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`documents:
  "https://swapi.test/api/planets/":
    next: null
    results:
      - name: Hoth
        url: "https://swapi.test/api/planets/4/"
`), 0o600))

	cfg := testConfig()
	logger := zaptest.NewLogger(t)

	src, closeSource, err := newSource(context.Background(), cfg, &populateOptions{fixture: path}, logger)
	require.NoError(t, err)
	defer closeSource()
	assert.IsType(t, &swapi.FixtureSource{}, src)

	src, closeCached, err := newSource(context.Background(), cfg, &populateOptions{fixture: path, cache: true}, logger)
	require.NoError(t, err)
	defer closeCached()
	require.IsType(t, &swapi.CachedSource{}, src)

	for range 2 {
		_, err := src.Get(context.Background(), "https://swapi.test/api/planets/")
		require.NoError(t, err)
	}
	hits, misses := src.(*swapi.CachedSource).Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestNewSource_MissingFixture(t *testing.T) {
	_, _, err := newSource(context.Background(), testConfig(),
		&populateOptions{fixture: filepath.Join(t.TempDir(), "nope.yaml")}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load fixture")
}

func TestPrintReport(t *testing.T) {
	report := &models.PopulateReport{
		Planets:      models.ImportCounts{Fetched: 2, Created: 2},
		Films:        models.ImportCounts{Fetched: 1, Created: 1},
		People:       models.ImportCounts{Fetched: 3, Created: 2, Existing: 1},
		LinksAdded:   5,
		LinksSkipped: 1,
		FetchErrors:  []string{"species: page 2: status 500"},
		Cache:        &models.CacheStats{Hits: 7, Misses: 4},
		Duration:     1500 * time.Millisecond,
	}

	var out bytes.Buffer
	require.NoError(t, printReport(&out, report))

	text := out.String()
	assert.Contains(t, text, "TYPE     FETCHED  CREATED  EXISTING")
	assert.Contains(t, text, "people   3        2        1")
	assert.Contains(t, text, "links added: 5, skipped: 1\ncache hits: 7, misses: 4\n")
	assert.Contains(t, text, "fetch errors (1):\n  species: page 2: status 500")
	assert.Contains(t, text, "finished in 1.5s")
}

func TestPrintReport_NoCacheLineWithoutCache(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printReport(&out, &models.PopulateReport{Duration: time.Second}))
	assert.NotContains(t, out.String(), "cache hits")
}

func TestPushImportMetrics(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	m, err := metrics.NewImportMetrics()
	require.NoError(t, err)
	m.EntityCreated("planet")
	logger := zaptest.NewLogger(t)

	pushImportMetrics(context.Background(), &config.MetricsConfig{}, m, logger)
	pushImportMetrics(context.Background(), &config.MetricsConfig{PushgatewayURL: gateway.URL, PushJob: "nightly"}, m, logger)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"PUT /metrics/job/nightly"}, paths)
}

func TestPushImportMetrics_FailureIsNotFatal(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer gateway.Close()

	m, err := metrics.NewImportMetrics()
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		pushImportMetrics(context.Background(), &config.MetricsConfig{PushgatewayURL: gateway.URL, PushJob: "nightly"}, m, zaptest.NewLogger(t))
	})
}

func TestPrintReport_AlreadyPopulated(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printReport(&out, &models.PopulateReport{AlreadyPopulated: true}))
	assert.Equal(t, "Database already populated; use --force to import again.\n", out.String())
}
