package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/colombia-mcp/pkg/dispatch"
)

const namespace = "colombia_mcp"

// Metrics holds the collectors of one server instance on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	ToolCalls      *prometheus.CounterVec
	ToolDuration   *prometheus.HistogramVec
	SessionsOpened *prometheus.CounterVec
	SessionsClosed *prometheus.CounterVec
	ActiveSessions *prometheus.GaugeVec
}

// NewMetrics creates and registers the collectors, plus the Go runtime and
// process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ToolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total number of tool calls by outcome",
			},
			[]string{"tool", "outcome"},
		),
		ToolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_duration_seconds",
				Help:      "Duration of tool calls, including the upstream round trip",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		SessionsOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_opened_total",
				Help:      "Total number of transport sessions opened",
			},
			[]string{"transport"},
		),
		SessionsClosed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_closed_total",
				Help:      "Total number of transport sessions closed by the client",
			},
			[]string{"transport"},
		),
		ActiveSessions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Sessions opened and not yet closed by this process. Expired sessions are not subtracted.",
			},
			[]string{"transport"},
		),
	}

	m.registry.MustRegister(
		m.ToolCalls,
		m.ToolDuration,
		m.SessionsOpened,
		m.SessionsClosed,
		m.ActiveSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCall records one dispatched call.
func (m *Metrics) ObserveCall(tool string, outcome dispatch.Outcome, elapsed time.Duration) {
	// Unknown names come from callers; collapse them to bound label cardinality.
	if outcome == dispatch.OutcomeUnknown {
		tool = "unknown"
	}
	m.ToolCalls.WithLabelValues(tool, string(outcome)).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// SessionOpened records a new session.
func (m *Metrics) SessionOpened(transport string) {
	m.SessionsOpened.WithLabelValues(transport).Inc()
	m.ActiveSessions.WithLabelValues(transport).Inc()
}

// SessionClosed records a session closed by the client.
func (m *Metrics) SessionClosed(transport string) {
	m.SessionsClosed.WithLabelValues(transport).Inc()
	m.ActiveSessions.WithLabelValues(transport).Dec()
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
