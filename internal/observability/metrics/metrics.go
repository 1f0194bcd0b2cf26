package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "pvmonitor_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	aggregationTotal   *prometheus.CounterVec
	aggregationLatency *prometheus.HistogramVec

	fetchTotal   *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	snapshotCaptureTotal    *prometheus.CounterVec
	snapshotRefreshFailures prometheus.Counter
)

// Init registers observability metrics and DB connection-pool gauges.
func Init(db *sql.DB) {
	registerOnce.Do(func() {
		aggregationTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "aggregation_total",
				Help: "Total report aggregations by result",
			},
			[]string{"result"},
		)
		aggregationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "aggregation_latency_seconds",
				Help:    "Report aggregation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		fetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "fetch_total",
				Help: "Total data API year fetches by result",
			},
			[]string{"result"},
		)
		fetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "fetch_latency_seconds",
				Help:    "Data API year fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report export operations by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		snapshotCaptureTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshot_capture_total",
				Help: "Total snapshot captures by result",
			},
			[]string{"result"},
		)
		snapshotRefreshFailures = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshot_refresh_failures_total",
				Help: "Total failed installations during scheduled snapshot refresh",
			},
		)

		prometheus.MustRegister(
			aggregationTotal,
			aggregationLatency,
			fetchTotal,
			fetchLatency,
			exportTotal,
			exportLatency,
			snapshotCaptureTotal,
			snapshotRefreshFailures,
		)

		if db != nil {
			registerDBMetrics(db)
		}
	})
}

func registerDBMetrics(db *sql.DB) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "db_open_connections",
			Help: "Open connections in the database pool",
		},
		func() float64 { return float64(db.Stats().OpenConnections) },
	))
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "db_in_use_connections",
			Help: "In-use connections in the database pool",
		},
		func() float64 { return float64(db.Stats().InUse) },
	))
}

// ObserveAggregation records aggregation duration and result.
func ObserveAggregation(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if aggregationTotal != nil {
		aggregationTotal.WithLabelValues(result).Inc()
	}
	if aggregationLatency != nil {
		aggregationLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveFetch records data API fetch duration and result.
func ObserveFetch(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if fetchTotal != nil {
		fetchTotal.WithLabelValues(result).Inc()
	}
	if fetchLatency != nil {
		fetchLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveExport records export latency by format and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncSnapshotCapture increments the snapshot capture counter.
func IncSnapshotCapture(result string) {
	if result == "" {
		result = resultSuccess
	}
	if snapshotCaptureTotal != nil {
		snapshotCaptureTotal.WithLabelValues(result).Inc()
	}
}

// IncSnapshotRefreshFailure counts a failed installation in a refresh run.
func IncSnapshotRefreshFailure() {
	if snapshotRefreshFailures != nil {
		snapshotRefreshFailures.Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
