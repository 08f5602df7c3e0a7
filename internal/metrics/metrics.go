// Package metrics exposes hub counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "guildchat"

// Metrics implements core.Recorder on top of a Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	connections      prometheus.Gauge
	sessions         prometheus.Gauge
	messagesTotal    *prometheus.CounterVec
	rejectedTotal    *prometheus.CounterVec
	droppedTotal     prometheus.Counter
	connectionsTotal prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Open connections, joined or not.",
		}),
		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Live sessions, one per joined identity.",
		}),
		messagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Messages appended to the store.",
		}, []string{"server"}),
		rejectedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_rejected_total",
			Help:      "Commands answered with an error.",
		}, []string{"command", "code"}),
		droppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Deliveries dropped because a client queue was full.",
		}),
		connectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Connections accepted since start.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ConnectionOpened() {
	m.connections.Inc()
	m.connectionsTotal.Inc()
}

func (m *Metrics) ConnectionClosed() { m.connections.Dec() }

func (m *Metrics) SessionStarted() { m.sessions.Inc() }

func (m *Metrics) SessionEnded() { m.sessions.Dec() }

func (m *Metrics) MessageStored(serverID string) {
	m.messagesTotal.WithLabelValues(serverID).Inc()
}

func (m *Metrics) CommandRejected(command, code string) {
	m.rejectedTotal.WithLabelValues(command, code).Inc()
}

func (m *Metrics) EventsDropped(n int) {
	m.droppedTotal.Add(float64(n))
}
