package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors used across the service
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	AuthFailures    *prometheus.CounterVec
	ProcedureCalls  *prometheus.CounterVec
	ProcedureTime   *prometheus.HistogramVec
	RoleConnections *prometheus.CounterVec
	OpenConnections prometheus.Gauge
	BatchProcessed  *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Passing nil uses the default
// registry. Collectors that are already registered are reused.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	return &Metrics{
		HTTPRequests: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"})),

		HTTPDuration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"})),

		AuthFailures: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Authentication failures by kind",
		}, []string{"kind"})),

		ProcedureCalls: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "procedure_calls_total",
			Help:      "Stored procedure calls by outcome",
		}, []string{"procedure", "outcome"})),

		ProcedureTime: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "procedure_duration_seconds",
			Help:      "Stored procedure round trip time",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"})),

		RoleConnections: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "role_connections_total",
			Help:      "Per-request role connections opened, by principal and result",
		}, []string{"principal", "result"})),

		OpenConnections: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "role_connections_open",
			Help:      "Role connections currently held by requests",
		})),

		BatchProcessed: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "processed_total",
			Help:      "Records processed by maintenance jobs",
		}, []string{"job"})),

		gatherer: gatherer,
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveProcedure records one procedure call
func (m *Metrics) ObserveProcedure(procedure, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ProcedureCalls.WithLabelValues(procedure, outcome).Inc()
	m.ProcedureTime.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// AuthFailed counts one authentication failure
func (m *Metrics) AuthFailed(kind string) {
	if m == nil {
		return
	}
	m.AuthFailures.WithLabelValues(kind).Inc()
}

// ConnectionOpened counts a role connection attempt
func (m *Metrics) ConnectionOpened(principal string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.RoleConnections.WithLabelValues(principal, result).Inc()
	if ok {
		m.OpenConnections.Inc()
	}
}

// ConnectionClosed releases a role connection from the open gauge
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.OpenConnections.Dec()
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
