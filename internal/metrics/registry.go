package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the application instruments with an isolated Prometheus
// registry so tests and embedded servers never collide on the global one.
type Registry struct {
	registry *prometheus.Registry
	Metrics  *Metrics
}

// NewRegistry creates a registry with all application instruments plus Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		Metrics:  NewMetrics(),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	r.registry.MustRegister(
		r.Metrics.HTTPRequestsTotal,
		r.Metrics.HTTPRequestDuration,
		r.Metrics.ModelElements,
		r.Metrics.ModelReloadsTotal,
		r.Metrics.ModelLoadDuration,
		r.Metrics.SearchQueriesTotal,
		r.Metrics.WatcherEventsTotal,
	)

	return r
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler returns the scrape endpoint handler.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// SetElementCounts updates the per-kind element gauges after a load.
func (r *Registry) SetElementCounts(counts map[string]int) {
	r.Metrics.ModelElements.Reset()
	for kind, n := range counts {
		r.Metrics.ModelElements.WithLabelValues(kind).Set(float64(n))
	}
}
