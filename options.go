package galera

import (
	"go.opentelemetry.io/otel/trace"
)

// Option is a configuration option for a Driver instance
type Option func(*Driver)

// WithTemplate creates an Option that changes how DSNs are recognised and rewritten
func WithTemplate(t Template) Option {
	return func(d *Driver) {
		d.template = t
	}
}

// WithMetrics creates an Option recording connects and open connections per host
func WithMetrics(m *Metrics) Option {
	return func(d *Driver) {
		d.metrics = m
	}
}

// WithTracer creates an Option that wraps each connect in a span from t
func WithTracer(t trace.Tracer) Option {
	return func(d *Driver) {
		d.tracer = t
	}
}

// WithLog creates an Option for the given Log implementation
//
// The log will be called with near-trace-level debugging to inspect routing behaviour
func WithLog(l Log) Option {
	return func(d *Driver) {
		d.logFunc = l
	}
}
