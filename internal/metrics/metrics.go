package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the viewer.
type Metrics struct {
	registry             *prometheus.Registry
	resolveAttemptsTotal prometheus.Counter
	resolveTimeoutsTotal prometheus.Counter
	staleReloadsTotal    prometheus.Counter
	streamErrorsTotal    prometheus.Counter
	bindsTotal           *prometheus.CounterVec
	boundStreams         prometheus.Gauge
}

// New creates and registers the viewer metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	resolveAttemptsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "viewer_resolve_attempts_total",
		Help: "Total number of stream resolution attempts",
	})
	resolveTimeoutsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "viewer_resolve_timeouts_total",
		Help: "Total number of resolutions that hit the readiness-poll deadline",
	})
	staleReloadsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "viewer_stale_reloads_total",
		Help: "Total number of catalog reloads discarded because the selection changed",
	})
	streamErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "viewer_stream_errors_total",
		Help: "Total number of decode errors reported by the bound player",
	})
	bindsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "viewer_binds_total",
		Help: "Total number of successful player binds, by decode strategy",
	}, []string{"strategy"})
	boundStreams := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "viewer_bound_streams",
		Help: "Number of streams currently bound to the console player",
	})

	registry.MustRegister(
		resolveAttemptsTotal,
		resolveTimeoutsTotal,
		staleReloadsTotal,
		streamErrorsTotal,
		bindsTotal,
		boundStreams,
	)

	return &Metrics{
		registry:             registry,
		resolveAttemptsTotal: resolveAttemptsTotal,
		resolveTimeoutsTotal: resolveTimeoutsTotal,
		staleReloadsTotal:    staleReloadsTotal,
		streamErrorsTotal:    streamErrorsTotal,
		bindsTotal:           bindsTotal,
		boundStreams:         boundStreams,
	}
}

// IncResolveAttempts increments the resolution attempt counter.
func (m *Metrics) IncResolveAttempts() {
	if m != nil {
		m.resolveAttemptsTotal.Inc()
	}
}

// IncResolveTimeouts increments the readiness-poll deadline counter.
func (m *Metrics) IncResolveTimeouts() {
	if m != nil {
		m.resolveTimeoutsTotal.Inc()
	}
}

// IncStaleReloads increments the discarded-reload counter.
func (m *Metrics) IncStaleReloads() {
	if m != nil {
		m.staleReloadsTotal.Inc()
	}
}

// IncStreamErrors increments the decode error counter.
func (m *Metrics) IncStreamErrors() {
	if m != nil {
		m.streamErrorsTotal.Inc()
	}
}

// IncBinds increments the bind counter for a decode strategy.
func (m *Metrics) IncBinds(strategy string) {
	if m != nil {
		m.bindsTotal.WithLabelValues(strategy).Inc()
	}
}

// SetBoundStreams sets the bound streams gauge.
func (m *Metrics) SetBoundStreams(n int) {
	if m != nil {
		m.boundStreams.Set(float64(n))
	}
}

// Handler returns an http.Handler that serves the viewer metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
