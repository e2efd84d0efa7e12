package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// namespace prefixes every metric the gateway exposes.
const namespace = "llmux"

// Collector owns the gateway's Prometheus metrics. A nil *Collector is
// valid: every recording method is a no-op, so components take a collector
// unconditionally and metrics can be disabled by wiring nil.
type Collector struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	providerReqs    *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	cacheOps        *prometheus.CounterVec
	storeEntries    prometheus.Gauge
}

// New creates a collector with all gateway metrics registered on a fresh
// registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total inbound HTTP requests by path and status code",
			},
			[]string{"path", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Inbound HTTP request duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"path"},
		),

		providerReqs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_requests_total",
				Help:      "Total upstream provider attempts by provider, model, and outcome",
			},
			[]string{"provider", "model", "status"},
		),

		providerLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_latency_seconds",
				Help:      "Upstream provider call latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),

		cacheOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_operations_total",
				Help:      "Response cache operations by op and result",
			},
			[]string{"op", "result"},
		),

		storeEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "responses_store_entries",
				Help:      "Current number of entries in the prior-response store",
			},
		),
	}

	c.registry.MustRegister(
		c.requests,
		c.requestDuration,
		c.providerReqs,
		c.providerLatency,
		c.cacheOps,
		c.storeEntries,
	)

	return c
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordRequest records one inbound HTTP request.
func (c *Collector) RecordRequest(path, status string, seconds float64) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(path, status).Inc()
	c.requestDuration.WithLabelValues(path).Observe(seconds)
}

// RecordProviderRequest records one upstream attempt. Status is "success"
// or "error".
func (c *Collector) RecordProviderRequest(provider, model, status string) {
	if c == nil {
		return
	}
	c.providerReqs.WithLabelValues(provider, model, status).Inc()
}

// ObserveProviderLatency records the latency of one upstream call.
func (c *Collector) ObserveProviderLatency(provider string, seconds float64) {
	if c == nil {
		return
	}
	c.providerLatency.WithLabelValues(provider).Observe(seconds)
}

// RecordCacheOperation records a cache get or set. Result is "hit", "miss",
// "stored", "skipped", or "error".
func (c *Collector) RecordCacheOperation(op, result string) {
	if c == nil {
		return
	}
	c.cacheOps.WithLabelValues(op, result).Inc()
}

// SetStoreEntries records the current prior-response store size.
func (c *Collector) SetStoreEntries(n int) {
	if c == nil {
		return
	}
	c.storeEntries.Set(float64(n))
}
