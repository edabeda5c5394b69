// Package metrics exposes Prometheus instrumentation for the HTTP API and
// the model load pipeline on an isolated registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all instruments the server and pipeline record into.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Model metrics
	ModelElements     *prometheus.GaugeVec
	ModelReloadsTotal *prometheus.CounterVec
	ModelLoadDuration prometheus.Histogram

	// Search metrics
	SearchQueriesTotal *prometheus.CounterVec

	// Watcher metrics
	WatcherEventsTotal prometheus.Counter
}

// NewMetrics creates all instruments, unregistered.
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modeldocs",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),

		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "modeldocs",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),

		ModelElements: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "modeldocs",
				Subsystem: "model",
				Name:      "elements",
				Help:      "Number of loaded model elements by kind",
			},
			[]string{"kind"},
		),

		ModelReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modeldocs",
				Subsystem: "model",
				Name:      "reloads_total",
				Help:      "Total number of model reloads",
			},
			[]string{"status"},
		),

		ModelLoadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "modeldocs",
				Subsystem: "model",
				Name:      "load_duration_seconds",
				Help:      "Model load and index duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modeldocs",
				Subsystem: "search",
				Name:      "queries_total",
				Help:      "Total number of search queries by backend",
			},
			[]string{"backend"},
		),

		WatcherEventsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "modeldocs",
				Subsystem: "watch",
				Name:      "events_total",
				Help:      "Total number of source file change events",
			},
		),
	}
}
