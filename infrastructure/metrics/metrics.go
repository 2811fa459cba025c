// Package metrics exports Prometheus metrics for the HTTP API, the health
// probes and authentication.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eagle"

// Metrics holds the service collectors, registered on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlight        prometheus.Gauge

	ProbeStatus   *prometheus.GaugeVec
	ProbeDuration *prometheus.HistogramVec

	LoginAttempts *prometheus.CounterVec
}

// New creates the collectors together with Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Requests currently being served.",
		}),
		ProbeStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "probe_status",
			Help:      "Last probe status: 0 healthy, 1 warning, 2 unhealthy.",
		}, []string{"probe"}),
		ProbeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "probe_duration_seconds",
			Help:      "Probe response time.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
		}, []string{"probe"}),
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveProbe records a health probe result.
func (m *Metrics) ObserveProbe(name, status string, responseTime time.Duration) {
	m.ProbeStatus.WithLabelValues(name).Set(probeStatusValue(status))
	m.ProbeDuration.WithLabelValues(name).Observe(responseTime.Seconds())
}

// ObserveLogin counts a login attempt; outcome is "success" or "failure".
func (m *Metrics) ObserveLogin(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

func probeStatusValue(status string) float64 {
	switch status {
	case "Healthy":
		return 0
	case "Warning":
		return 1
	default:
		return 2
	}
}
