package galera

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/codership/galera"

// connector binds a templated DSN; every Connect picks the next host.
//
// Delegate connectors are opened once per resolved DSN and kept until Close.
type connector struct {
	driver *Driver
	dsn    string

	mu        sync.Mutex
	delegates map[string]driver.Connector
	closed    bool
}

var (
	_ driver.Connector = (*connector)(nil)
	_ io.Closer        = (*connector)(nil)
)

// Connect routes a new connection to the next host and delegates the physical connect
func (c *connector) Connect(ctx context.Context) (driver.Conn, error) {
	d := c.driver

	host, routed := d.hosts.Next()
	dsn := d.template.Passthrough(c.dsn)
	if routed {
		dsn = d.template.Resolve(c.dsn, host)
	}

	ctx, span := d.tracer.Start(ctx, "galera.connect", trace.WithAttributes(
		attribute.String("galera.host", host),
		attribute.Bool("galera.passthrough", !routed),
	))
	defer span.End()

	if routed {
		d.debugf("connecting to %s", host)
	} else {
		d.debugf("no hosts configured; passing connection through")
	}

	pc, err := c.open(ctx, dsn)
	if d.metrics != nil {
		d.metrics.RecordConnect(host, err == nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.debugf("connect to %q failed: %s", host, err)
		return nil, err
	}

	wc := &conn{Conn: pc, driver: d, id: uuid.NewString()}
	if routed {
		wc.host = host
		d.hosts.Increment(host)
		if d.metrics != nil {
			d.metrics.ConnectionOpened(host)
		}
		d.debugf("opened connection %s to %s (%d open)", wc.id, host, d.hosts.Active(host))
	}
	span.SetAttributes(attribute.String("galera.conn_id", wc.id))
	return wc, nil
}

// Driver returns the routing driver
func (c *connector) Driver() driver.Driver {
	return c.driver
}

// Close closes every delegate connector opened so far. "database/sql" calls it from DB.Close.
func (c *connector) Close() error {
	c.mu.Lock()
	delegates := c.delegates
	c.delegates = nil
	c.closed = true
	c.mu.Unlock()

	var errs []error
	for _, dc := range delegates {
		if cl, ok := dc.(io.Closer); ok {
			if err := cl.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(delegates) > 0 {
		c.driver.debugf("closed %d delegate connectors", len(delegates))
	}
	return errors.Join(errs...)
}

func (c *connector) open(ctx context.Context, dsn string) (driver.Conn, error) {
	dc, ok := c.driver.proxiedDriver.(driver.DriverContext)
	if !ok {
		return c.driver.proxiedDriver.Open(dsn)
	}
	pc, err := c.delegate(dc, dsn)
	if err != nil {
		return nil, err
	}
	return pc.Connect(ctx)
}

// delegate returns the cached delegate connector for dsn, opening it on first use. Failures are not cached.
func (c *connector) delegate(dc driver.DriverContext, dsn string) (driver.Connector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrConnectorClosed
	}
	if pc, ok := c.delegates[dsn]; ok {
		return pc, nil
	}
	pc, err := dc.OpenConnector(dsn)
	if err != nil {
		return nil, err
	}
	if c.delegates == nil {
		c.delegates = map[string]driver.Connector{}
	}
	c.delegates[dsn] = pc
	return pc, nil
}
