// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	// Cycle metrics
	CyclesTotal       *prometheus.CounterVec
	CycleDuration     prometheus.Histogram
	SnapshotSize      prometheus.Gauge
	ObservationsSaved prometheus.Counter

	// Extraction metrics
	DigestsBroadcast  prometheus.Counter
	ItemsSkipped      *prometheus.CounterVec
	ExtractionErrors  prometheus.Counter
	ExtractionLatency prometheus.Histogram

	// Upstream metrics
	UpstreamRequestErrors *prometheus.CounterVec

	// Health metrics
	LastSuccessfulCycle prometheus.Gauge
	RetainedHistorySize prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered on the default
// registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates a new Metrics instance registered on the
// given registerer. Tests use this with a fresh registry.
func NewMetricsWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "quaggy"
	}
	factory := promauto.With(reg)

	return &Metrics{
		CyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "cycles_total",
			Help:      "Total number of update cycles by status",
		}, []string{"status"}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "cycle_duration_seconds",
			Help:      "Update cycle duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		SnapshotSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "snapshot_size",
			Help:      "Number of items in the most recent market snapshot",
		}),
		ObservationsSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "observations_saved_total",
			Help:      "Total number of observations persisted",
		}),

		DigestsBroadcast: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "digests_broadcast_total",
			Help:      "Total number of per-item digests sent to the edge tier",
		}),
		ItemsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "items_skipped_total",
			Help:      "Total number of items skipped during extraction by reason",
		}, []string{"reason"}),
		ExtractionErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "extraction_errors_total",
			Help:      "Total number of per-item extraction failures",
		}),
		ExtractionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "extraction_latency_seconds",
			Help:      "Per-item digest extraction latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		UpstreamRequestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_errors_total",
			Help:      "Total number of upstream API failures by operation",
		}, []string{"operation"}),

		LastSuccessfulCycle: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of the last successful update cycle",
		}),
		RetainedHistorySize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "retained_history_size",
			Help:      "Total number of observations retained in memory",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCycle records one update cycle.
func (m *Metrics) RecordCycle(status string, durationSeconds float64) {
	m.CyclesTotal.WithLabelValues(status).Inc()
	m.CycleDuration.Observe(durationSeconds)
}

// RecordSkip counts one skipped item.
func (m *Metrics) RecordSkip(reason string) {
	m.ItemsSkipped.WithLabelValues(reason).Inc()
}

// RecordUpstreamError counts one failed upstream call.
func (m *Metrics) RecordUpstreamError(operation string) {
	m.UpstreamRequestErrors.WithLabelValues(operation).Inc()
}
