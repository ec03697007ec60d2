package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "population_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for ingestion
// and the dashboard.
type Metrics struct {
	// Ingestion metrics.
	RowsRead              prometheus.Counter
	RowsDropped           *prometheus.CounterVec // labels: reason={sex,year,value}
	ObservationsLoaded    prometheus.Gauge
	ObservationsPublished *prometheus.CounterVec // labels: sink={artifact,kafka}

	// Dashboard metrics.
	FilterEvents        *prometheus.CounterVec // labels: kind={country,year,range}
	AggregationDuration prometheus.Histogram
	ActiveSessions      prometheus.Gauge
	SessionEvictions    prometheus.Counter
	ChartRenders        *prometheus.CounterVec // labels: view, outcome={success,empty,error}
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Total raw rows read from the source CSV.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Raw rows dropped during normalization, by reason.",
		}, []string{"reason"}),
		ObservationsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "observations_loaded",
			Help:      "Canonical observations held by the loaded dataset.",
		}),
		ObservationsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_published_total",
			Help:      "Total observations written by the ingest pipeline, by sink.",
		}, []string{"sink"}),
		FilterEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_events_total",
			Help:      "Filter control events applied, by kind.",
		}, []string{"kind"}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of one aggregate and adapt cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Dashboard sessions currently held in the session store.",
		}),
		SessionEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_evictions_total",
			Help:      "Sessions evicted from the store as least recently used.",
		}),
		ChartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_renders_total",
			Help:      "Chart renders by view and outcome.",
		}, []string{"view", "outcome"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.RowsRead,
		m.RowsDropped,
		m.ObservationsLoaded,
		m.ObservationsPublished,
		m.FilterEvents,
		m.AggregationDuration,
		m.ActiveSessions,
		m.SessionEvictions,
		m.ChartRenders,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
