package infrastructure

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application-specific Prometheus metrics.
// A fresh registry is used per instance so tests never collide on the
// global default registry.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP surface
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Relay forwarding
	RelayUploadsTotal *prometheus.CounterVec
	RelayFetchesTotal *prometheus.CounterVec
}

// NewMetrics creates the metric set on its own registry, including the
// standard Go runtime and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry: registry,
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		RelayUploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_uploads_total",
			Help: "Total number of CSV forwards to the hosting service",
		}, []string{"outcome"}),
		RelayFetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_fetches_total",
			Help: "Total number of hosted-data reads from the hosting service",
		}, []string{"outcome"}),
	}
}

// Handler returns the Prometheus exposition handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one completed HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRelayUpload records the outcome of one forwarded upload
func (m *Metrics) RecordRelayUpload(outcome string) {
	m.RelayUploadsTotal.WithLabelValues(outcome).Inc()
}

// RecordRelayFetch records the outcome of one hosted-data read
func (m *Metrics) RecordRelayFetch(outcome string) {
	m.RelayFetchesTotal.WithLabelValues(outcome).Inc()
}
