package galera

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ConfigError indicates that a Driver could not be set up from its configuration
type ConfigError struct {
	Reason string
	Err    error
}

func (e ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("galera: %s: %s", e.Reason, e.Err)
	}
	return "galera: " + e.Reason
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

// ErrConnectorClosed is returned when connecting through a connector that has been closed
var ErrConnectorClosed = errors.New("galera: connector is closed")

// Acceptor may be implemented by a delegate driver to report whether it can handle a DSN
type Acceptor interface {
	Accepts(dsn string) bool
}

// Log is function that is called with near-trace-level debugging to inspect routing behaviour
type Log func(string)

// Driver is a "database/sql/driver".Driver implementation that routes each new connection to the next host of a
// cluster, in round robin order
type Driver struct {
	proxiedDriver driver.Driver
	hosts         *Hosts
	template      Template
	metrics       *Metrics
	tracer        trace.Tracer
	logFunc       Log

	// connectors used by Open, one per templated DSN
	mu         sync.Mutex
	connectors map[string]*connector
}

var (
	_ driver.Driver        = (*Driver)(nil)
	_ driver.DriverContext = (*Driver)(nil)
	_ io.Closer            = (*Driver)(nil)
)

// New wraps a lower level delegate "database/sql/driver".Driver with a routing driver over hosts
func New(delegate driver.Driver, hosts *Hosts, opts ...Option) *Driver {
	if hosts == nil {
		hosts = NewHosts()
	}
	d := &Driver{proxiedDriver: delegate, hosts: hosts, template: DefaultTemplate}
	for _, o := range opts {
		o(d)
	}

	// defaults
	if d.tracer == nil {
		d.tracer = noop.NewTracerProvider().Tracer(tracerName)
	}

	return d
}

// Open implements "database/sql/driver".Driver.Open(), connecting to the next host.
//
// Open reuses one connector per DSN, so delegate connectors stay open until Close.
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	d.mu.Lock()
	c, ok := d.connectors[dsn]
	if !ok {
		c = &connector{driver: d, dsn: dsn}
		if d.connectors == nil {
			d.connectors = map[string]*connector{}
		}
		d.connectors[dsn] = c
	}
	d.mu.Unlock()
	return c.Connect(context.Background())
}

// Close closes the delegate connectors kept by Open. Connections already open are not affected, and later calls to
// Open start over.
func (d *Driver) Close() error {
	d.mu.Lock()
	connectors := d.connectors
	d.connectors = nil
	d.mu.Unlock()

	var errs []error
	for _, c := range connectors {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenConnector implements "database/sql/driver".DriverContext.OpenConnector(), binding a templated DSN
func (d *Driver) OpenConnector(dsn string) (driver.Connector, error) {
	return &connector{driver: d, dsn: dsn}, nil
}

// Accepts reports whether dsn carries the routing scheme, and the delegate driver accepts it once stripped
func (d *Driver) Accepts(dsn string) bool {
	if !d.template.Routed(dsn) {
		return false
	}
	return accepts(d.proxiedDriver, d.template.Strip(dsn))
}

func accepts(delegate driver.Driver, dsn string) bool {
	switch dd := delegate.(type) {
	case Acceptor:
		return dd.Accepts(dsn)
	case driver.DriverContext:
		c, err := dd.OpenConnector(dsn)
		if err != nil {
			return false
		}
		if cl, ok := c.(io.Closer); ok {
			cl.Close()
		}
		return true
	}
	return true
}

// Parent returns the wrapped Driver
func (d *Driver) Parent() driver.Driver {
	return d.proxiedDriver
}

// Hosts returns the registry connections are routed over
func (d *Driver) Hosts() *Hosts {
	return d.hosts
}

// Template returns the template used to rewrite DSNs
func (d *Driver) Template() Template {
	return d.template
}

func (d *Driver) release(c *conn, host string) {
	d.hosts.Decrement(host)
	if d.metrics != nil {
		d.metrics.ConnectionClosed(host)
	}
	d.debugf("released connection %s to %s (%d open)", c.id, host, d.hosts.Active(host))
}

func (d *Driver) debugf(format string, args ...interface{}) {
	if d.logFunc != nil {
		d.logFunc("galera: " + fmt.Sprintf(format, args...))
	}
}
