package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the gateway on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	decisionsTotal  *prometheus.CounterVec
}

// NewMetrics initializes the registry and collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "claims_console_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "claims_console_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "claims_console_http_errors_total",
		Help: "Error responses by route and error code.",
	}, []string{"route", "method", "error_code"})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "claims_console_gate_decisions_total",
		Help: "Access decisions by subject, a page path or action name.",
	}, []string{"subject", "allowed"})
	registry.MustRegister(requests, duration, errs, decisions)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		errorsTotal:     errs,
		decisionsTotal:  decisions,
	}
}

// Handler returns the http.Handler serving /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registerer exposes the registry for additional collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// RecordRequest counts a finished request against its route pattern.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	route = routeLabel(route)
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(routeLabel(route), method, code).Inc()
}

// RecordDecision counts a gate decision for subject.
func (m *Metrics) RecordDecision(subject string, allowed bool) {
	if m == nil {
		return
	}
	m.decisionsTotal.WithLabelValues(subject, strconv.FormatBool(allowed)).Inc()
}

func routeLabel(route string) string {
	if route == "" {
		return "unknown"
	}
	return route
}
