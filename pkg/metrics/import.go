package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// DefaultPushJob is the Pushgateway job name for populate runs.
const DefaultPushJob = "holocron_populate"

// ImportMetrics counts what one populate run did. Populate is a short-lived
// command, so the counters are pushed to a Pushgateway instead of scraped.
type ImportMetrics struct {
	registry *prometheus.Registry

	entitiesCreated  *prometheus.CounterVec // kind
	linksAdded       *prometheus.CounterVec // relation
	linksSkipped     *prometheus.CounterVec // relation
	fetchErrors      *prometheus.CounterVec // resource
	populateRuns     *prometheus.CounterVec // outcome
	populateDuration prometheus.Gauge
	lastCompletion   prometheus.Gauge
}

// NewImportMetrics creates and registers the populate collectors.
func NewImportMetrics() (*ImportMetrics, error) {
	m := &ImportMetrics{
		registry: prometheus.NewRegistry(),

		entitiesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "entities_created_total",
			Help:      "Entities created by the populate run",
		}, []string{"kind"}),

		linksAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "links_added_total",
			Help:      "Relationship links added by the populate run",
		}, []string{"relation"}),

		linksSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "links_skipped_total",
			Help:      "Relationship links skipped because a target could not be resolved",
		}, []string{"relation"}),

		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "fetch_errors_total",
			Help:      "Source pages or records that could not be fetched",
		}, []string{"resource"}),

		populateRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "populate_runs_total",
			Help:      "Populate runs by outcome (succeeded, skipped, failed)",
		}, []string{"outcome"}),

		populateDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "populate_duration_seconds",
			Help:      "Wall time of the last populate run in seconds",
		}),

		lastCompletion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "last_completion_timestamp_seconds",
			Help:      "Unix time the last populate run finished",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.entitiesCreated,
		m.linksAdded,
		m.linksSkipped,
		m.fetchErrors,
		m.populateRuns,
		m.populateDuration,
		m.lastCompletion,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Registry exposes the underlying registry.
func (m *ImportMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *ImportMetrics) EntityCreated(kind string) {
	m.entitiesCreated.WithLabelValues(kind).Inc()
}

func (m *ImportMetrics) LinkAdded(relation string) {
	m.linksAdded.WithLabelValues(relation).Inc()
}

func (m *ImportMetrics) LinkSkipped(relation string) {
	m.linksSkipped.WithLabelValues(relation).Inc()
}

func (m *ImportMetrics) FetchError(resource string) {
	m.fetchErrors.WithLabelValues(resource).Inc()
}

func (m *ImportMetrics) PopulateFinished(outcome string, duration time.Duration) {
	m.populateRuns.WithLabelValues(outcome).Inc()
	m.populateDuration.Set(duration.Seconds())
	m.lastCompletion.SetToCurrentTime()
}

// Push replaces the job's metric group on the Pushgateway at url with the
// current values.
func (m *ImportMetrics) Push(ctx context.Context, url, job string, client *http.Client) error {
	pusher := push.New(url, job).Gatherer(m.registry)
	if client != nil {
		pusher = pusher.Client(client)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push import metrics: %w", err)
	}
	return nil
}
