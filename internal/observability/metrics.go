package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "floodwatch"

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	SnapshotFetches *prometheus.CounterVec   // labels: outcome={success,error,empty}
	HistoryFetches  *prometheus.CounterVec   // labels: outcome={success,error,empty}
	FetchDuration   *prometheus.HistogramVec // labels: kind={snapshot,history}
	StaleResults    *prometheus.CounterVec   // labels: kind={snapshot,history}
	HistoryCache    *prometheus.CounterVec   // labels: result={hit,miss}

	ViewEvents          *prometheus.CounterVec // labels: type={hover,hover_end,click,map_click,zoom}
	SelectionCleared    *prometheus.CounterVec // labels: reason={toggle,zoom_out,invariant}
	InvariantViolations prometheus.Counter
	NavigationRequests  *prometheus.CounterVec // labels: outcome={success,error}

	StationsLoaded prometheus.Gauge
	SessionRunning prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics([]float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})
	prometheus.MustRegister(
		m.SnapshotFetches,
		m.HistoryFetches,
		m.FetchDuration,
		m.StaleResults,
		m.HistoryCache,
		m.ViewEvents,
		m.SelectionCleared,
		m.InvariantViolations,
		m.NavigationRequests,
		m.StationsLoaded,
		m.SessionRunning,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(prometheus.DefBuckets)
}

func newMetrics(buckets []float64) *Metrics {
	return &Metrics{
		SnapshotFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_fetches_total",
			Help:      "Station snapshot fetches by outcome.",
		}, []string{"outcome"}),
		HistoryFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_fetches_total",
			Help:      "Station history fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Water API request duration in seconds.",
			Buckets:   buckets,
		}, []string{"kind"}),
		StaleResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_total",
			Help:      "Fetch results discarded because a newer request superseded them.",
		}, []string{"kind"}),
		HistoryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_cache_lookups_total",
			Help:      "Station history cache lookups, by result.",
		}, []string{"result"}),
		ViewEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_events_total",
			Help:      "Map interaction events applied, by type.",
		}, []string{"type"}),
		SelectionCleared: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_cleared_total",
			Help:      "Province selections cleared, by reason.",
		}, []string{"reason"}),
		InvariantViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invariant_violations_total",
			Help:      "Events that referenced a province outside the boundary set.",
		}),
		NavigationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigation_requests_total",
			Help:      "Station detail navigation intents, by outcome.",
		}, []string{"outcome"}),
		StationsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stations_loaded",
			Help:      "Stations in the current snapshot.",
		}),
		SessionRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_running",
			Help:      "1 when the map session loop is active, 0 when shut down.",
		}),
	}
}
