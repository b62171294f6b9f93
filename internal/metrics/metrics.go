package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the service collectors and the registry they are exposed from.
type Metrics struct {
	registry *prometheus.Registry

	mappingsCreated *prometheus.CounterVec
	codeCollisions  prometheus.Counter
	codeExhausted   prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInflight prometheus.Gauge
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mappingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shortener_mappings_created_total",
			Help: "Mappings created, by code source.",
		}, []string{"source"}),
		codeCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shortener_code_collisions_total",
			Help: "Generated codes rejected because the owner already used them.",
		}),
		codeExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shortener_code_space_exhausted_total",
			Help: "Create calls that gave up after the maximum number of attempts.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.mappingsCreated,
		m.codeCollisions,
		m.codeExhausted,
		m.httpRequests,
		m.httpDuration,
		m.httpInflight,
	)

	return m
}

// Created counts a created mapping.
func (m *Metrics) Created(custom bool) {
	source := "random"
	if custom {
		source = "custom"
	}

	m.mappingsCreated.WithLabelValues(source).Inc()
}

// Collision counts a generated code that was already taken.
func (m *Metrics) Collision() {
	m.codeCollisions.Inc()
}

// Exhausted counts a create that ran out of attempts.
func (m *Metrics) Exhausted() {
	m.codeExhausted.Inc()
}

// RequestStarted tracks an in-flight request; call the returned func when it ends.
func (m *Metrics) RequestStarted() func(method, route string, status int) {
	start := time.Now()

	m.httpInflight.Inc()

	return func(method, route string, status int) {
		m.httpInflight.Dec()
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
