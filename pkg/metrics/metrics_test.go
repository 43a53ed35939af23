package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestObserveRequest(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.ObserveRequest(http.MethodGet, "GET /characters/{id}", http.StatusNotFound, 5*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `holocron_http_requests_total{method="GET",route="GET /characters/{id}",status="404"} 1`)
	assert.Contains(t, body, `holocron_http_request_duration_seconds_count{method="GET",route="GET /characters/{id}"} 1`)
}

func TestHandler_IncludesRuntimeCollectors(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	body := scrape(t, m)
	assert.Contains(t, body, "go_goroutines")
	assert.NotContains(t, body, "holocron_import_")
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	b, err := New()
	require.NoError(t, err)

	a.ObserveRequest(http.MethodGet, "GET /films", http.StatusOK, time.Millisecond)
	assert.NotContains(t, scrape(t, b), `route="GET /films"`)
}
