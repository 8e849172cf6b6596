package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// wait-time ETL.
type Metrics struct {
	SamplesFetched      *prometheus.CounterVec // labels: attraction
	FetchErrors         *prometheus.CounterVec // labels: type={transport,schema,parse,other}
	FetchDuration       prometheus.Histogram
	BuildsTotal         *prometheus.CounterVec // labels: outcome={success,error}
	BuildDuration       prometheus.Histogram
	SentinelRowsDropped prometheus.Counter
	DatasetRows         prometheus.Gauge

	// Sink delivery metrics.
	SnapshotsDelivered *prometheus.CounterVec // labels: sink
	SinkErrors         *prometheus.CounterVec // labels: sink

	PipelineRunning prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.SamplesFetched,
		m.FetchErrors,
		m.FetchDuration,
		m.BuildsTotal,
		m.BuildDuration,
		m.SentinelRowsDropped,
		m.DatasetRows,
		m.SnapshotsDelivered,
		m.SinkErrors,
		m.PipelineRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SamplesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wait_etl",
			Name:      "samples_fetched_total",
			Help:      "Rows read from source datasets, per attraction.",
		}, []string{"attraction"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wait_etl",
			Name:      "fetch_errors_total",
			Help:      "Source fetch failures by error type.",
		}, []string{"type"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wait_etl",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a single source download and decode.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		BuildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wait_etl",
			Name:      "builds_total",
			Help:      "Dataset builds by outcome.",
		}, []string{"outcome"}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wait_etl",
			Name:      "build_duration_seconds",
			Help:      "Duration of a complete multi-source dataset build.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}),
		SentinelRowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wait_etl",
			Name:      "sentinel_rows_dropped_total",
			Help:      "Rows removed because the feed marked them as having no data.",
		}),
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wait_etl",
			Name:      "dataset_rows",
			Help:      "Row count of the most recent aggregated snapshot.",
		}),
		SnapshotsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wait_etl",
			Name:      "snapshots_delivered_total",
			Help:      "Snapshots delivered per sink.",
		}, []string{"sink"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wait_etl",
			Name:      "sink_errors_total",
			Help:      "Snapshot delivery failures per sink.",
		}, []string{"sink"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wait_etl",
			Name:      "pipeline_running",
			Help:      "1 when the refresh pipeline is active, 0 when shut down.",
		}),
	}
}
