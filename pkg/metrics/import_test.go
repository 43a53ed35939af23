package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocron-dev/holocron/pkg/services"
)

var _ services.ImportRecorder = (*ImportMetrics)(nil)

// flatten keys every sample as name{label="value",...}. Histograms and
// summaries report their sample count.
func flatten(families []*dto.MetricFamily) map[string]float64 {
	out := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			sort.Strings(labels)
			key := mf.GetName()
			if len(labels) > 0 {
				key += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.Counter != nil:
				out[key] = m.GetCounter().GetValue()
			case m.Gauge != nil:
				out[key] = m.GetGauge().GetValue()
			case m.Untyped != nil:
				out[key] = m.GetUntyped().GetValue()
			}
		}
	}
	return out
}

func recordRun(m *ImportMetrics) {
	m.EntityCreated("planet")
	m.EntityCreated("planet")
	m.LinkAdded(services.RelationPersonFilms)
	m.LinkSkipped(services.RelationFilmPlanets)
	m.FetchError("people")
	m.PopulateFinished(services.OutcomeSucceeded, 3*time.Second)
}

func TestImportMetrics_Counters(t *testing.T) {
	m, err := NewImportMetrics()
	require.NoError(t, err)
	recordRun(m)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	got := flatten(families)

	assert.Equal(t, 2.0, got[`holocron_import_entities_created_total{kind="planet"}`])
	assert.Equal(t, 1.0, got[`holocron_import_links_added_total{relation="person_films"}`])
	assert.Equal(t, 1.0, got[`holocron_import_links_skipped_total{relation="film_planets"}`])
	assert.Equal(t, 1.0, got[`holocron_import_fetch_errors_total{resource="people"}`])
	assert.Equal(t, 1.0, got[`holocron_import_populate_runs_total{outcome="succeeded"}`])
	assert.Equal(t, 3.0, got[`holocron_import_populate_duration_seconds`])
	assert.Positive(t, got[`holocron_import_last_completion_timestamp_seconds`])
	assert.NotContains(t, got, "go_goroutines")
}

type fakePushgateway struct {
	mu      sync.Mutex
	method  string
	path    string
	samples map[string]float64
}

func (g *fakePushgateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.method, g.path = r.Method, r.URL.Path
	dec := expfmt.NewDecoder(r.Body, expfmt.ResponseFormat(r.Header))
	var families []*dto.MetricFamily
	for {
		mf := &dto.MetricFamily{}
		if err := dec.Decode(mf); err != nil {
			if !errors.Is(err, io.EOF) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			break
		}
		families = append(families, mf)
	}
	g.samples = flatten(families)
	w.WriteHeader(http.StatusOK)
}

func TestImportMetrics_Push(t *testing.T) {
	gateway := &fakePushgateway{}
	srv := httptest.NewServer(gateway)
	defer srv.Close()

	m, err := NewImportMetrics()
	require.NoError(t, err)
	recordRun(m)

	require.NoError(t, m.Push(context.Background(), srv.URL, DefaultPushJob, srv.Client()))

	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	assert.Equal(t, http.MethodPut, gateway.method)
	assert.Equal(t, "/metrics/job/"+DefaultPushJob, gateway.path)
	assert.Equal(t, 2.0, gateway.samples[`holocron_import_entities_created_total{kind="planet"}`])
	assert.Equal(t, 1.0, gateway.samples[`holocron_import_populate_runs_total{outcome="succeeded"}`])
	assert.Equal(t, 3.0, gateway.samples[`holocron_import_populate_duration_seconds`])
}

func TestImportMetrics_PushFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m, err := NewImportMetrics()
	require.NoError(t, err)

	err = m.Push(context.Background(), srv.URL, DefaultPushJob, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "push import metrics")
}
