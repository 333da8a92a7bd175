package galera

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// StatusSuccess labels a connect the delegate driver completed
	StatusSuccess = "success"
	// StatusFailure labels a connect the delegate driver refused
	StatusFailure = "failure"
)

// Metrics holds metrics related to routed connections.
type Metrics struct {
	// ActiveConnections tracks the connections currently open per host.
	// Labels: host
	ActiveConnections *prometheus.GaugeVec

	// ConnectsTotal tracks connect attempts per host and outcome. Unrouted connects use an empty host.
	// Labels: host, status (success, failure)
	ConnectsTotal *prometheus.CounterVec
}

// NewMetrics creates connection metrics registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	activeConnections := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "galera",
			Subsystem: "router",
			Name:      "active_connections",
			Help:      "Current number of open connections, broken down by host.",
		},
		[]string{"host"},
	)

	connectsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "galera",
			Subsystem: "router",
			Name:      "connects_total",
			Help:      "Total number of connect attempts, broken down by host and status.",
		},
		[]string{"host", "status"},
	)

	reg.MustRegister(activeConnections)
	reg.MustRegister(connectsTotal)

	return &Metrics{
		ActiveConnections: activeConnections,
		ConnectsTotal:     connectsTotal,
	}
}

// ConnectionOpened increments the open connections gauge for host.
func (m *Metrics) ConnectionOpened(host string) {
	m.ActiveConnections.WithLabelValues(host).Inc()
}

// ConnectionClosed decrements the open connections gauge for host.
func (m *Metrics) ConnectionClosed(host string) {
	m.ActiveConnections.WithLabelValues(host).Dec()
}

// RecordConnect records a connect attempt against host; an empty host is a passthrough connect.
func (m *Metrics) RecordConnect(host string, success bool) {
	status := StatusFailure
	if success {
		status = StatusSuccess
	}
	m.ConnectsTotal.WithLabelValues(host, status).Inc()
}
