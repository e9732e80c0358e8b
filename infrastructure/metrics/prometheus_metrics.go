// Package metrics provides the Prometheus-backed implementation of the
// pipeline's metrics collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/codelens/internal/ports"
)

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// metricLabels is the fixed label set applied to every series. The
// collector flattens whatever label map it receives onto these keys so
// series cardinality stays bounded.
var metricLabels = []string{"model", "language", "status"}

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus, tracking verification throughput, LLM latency, and token
// consumption.
type PrometheusMetrics struct {
	latency    *prometheus.HistogramVec
	counters   *prometheus.CounterVec
	gauges     *prometheus.GaugeVec
	histograms *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a collector registered in the given
// registry. A nil registry falls back to the default global registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "codelens_operation_duration_seconds",
				Help:    "Execution time of verification pipeline operations.",
				Buckets: prometheus.DefBuckets,
			},
			append([]string{"operation"}, metricLabels...),
		),
		counters: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codelens_events_total",
				Help: "Counts of verification pipeline events.",
			},
			append([]string{"metric"}, metricLabels...),
		),
		gauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "codelens_state",
				Help: "Current state values of the verification pipeline.",
			},
			append([]string{"metric"}, metricLabels...),
		),
		histograms: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "codelens_values",
				Help:    "Distribution of verification pipeline values.",
				Buckets: prometheus.DefBuckets,
			},
			append([]string{"metric"}, metricLabels...),
		),
	}
}

// RecordLatency records operation latency in seconds.
func (pm *PrometheusMetrics) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	pm.latency.WithLabelValues(flatten(operation, labels)...).Observe(duration.Seconds())
}

// RecordCounter increments a named counter.
func (pm *PrometheusMetrics) RecordCounter(metric string, value float64, labels map[string]string) {
	pm.counters.WithLabelValues(flatten(metric, labels)...).Add(value)
}

// RecordGauge sets a named gauge.
func (pm *PrometheusMetrics) RecordGauge(metric string, value float64, labels map[string]string) {
	pm.gauges.WithLabelValues(flatten(metric, labels)...).Set(value)
}

// RecordHistogram records a value in a named histogram.
func (pm *PrometheusMetrics) RecordHistogram(metric string, value float64, labels map[string]string) {
	pm.histograms.WithLabelValues(flatten(metric, labels)...).Observe(value)
}

// flatten maps the caller's label map onto the fixed label schema,
// filling absent keys with empty strings.
func flatten(name string, labels map[string]string) []string {
	values := make([]string, 0, len(metricLabels)+1)
	values = append(values, name)
	for _, key := range metricLabels {
		values = append(values, labels[key])
	}
	return values
}
