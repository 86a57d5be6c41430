// Package metrics provides Prometheus metrics for the pipeline.
package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	// Record metrics
	RecordsProcessed   *prometheus.CounterVec
	RecordsCurated     *prometheus.CounterVec
	RecordsQuarantined *prometheus.CounterVec

	// Violation metrics
	ViolationsTotal *prometheus.CounterVec

	// Run metrics
	RunDuration *prometheus.HistogramVec
	RunsFailed  *prometheus.CounterVec

	// Output metrics
	OutputBytes *prometheus.HistogramVec
}

// Config holds metrics configuration.
type Config struct {
	Enabled bool
	Address string // Address for metrics HTTP server (e.g., ":9090")
}

// Init initializes the pipeline metrics. Call this once at startup.
func Init(namespace string) *Metrics {
	if namespace == "" {
		namespace = "txn_curator"
	}

	return &Metrics{
		RecordsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_processed_total",
				Help:      "Total number of records read from raw batches",
			},
			[]string{"dataset"},
		),
		RecordsCurated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_curated_total",
				Help:      "Total number of records accepted as schema-conformant",
			},
			[]string{"dataset"},
		),
		RecordsQuarantined: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_quarantined_total",
				Help:      "Total number of records rejected to quarantine",
			},
			[]string{"dataset"},
		),
		ViolationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "violations_total",
				Help:      "Constraint violations observed, by field",
			},
			[]string{"dataset", "field"},
		),
		RunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "End-to-end duration of a pipeline run",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
			[]string{"command"},
		),
		RunsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_failed_total",
				Help:      "Total number of runs aborted by configuration or I/O errors",
			},
			[]string{"command"},
		),
		OutputBytes: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "output_bytes",
				Help:      "Size of written batch files",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 10), // 1KiB to ~1GiB
			},
			[]string{"stage"},
		),
	}
}

// ObserveRun records the duration of a completed run.
func (m *Metrics) ObserveRun(command string, start time.Time) {
	m.RunDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
}

// Serve exposes /metrics on the configured address. It is intended to run in
// a goroutine for the lifetime of the process.
func Serve(cfg Config) {
	if !cfg.Enabled {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	slog.Info("metrics server listening", "address", cfg.Address)
	if err := http.ListenAndServe(cfg.Address, mux); err != nil {
		slog.Error("metrics server stopped", "error", err)
	}
}
