// Package sqldrivermock provides a basic null implementation of "database/sql/driver".Driver, recording the DSNs it
// is asked to open
package sqldrivermock

import (
	"context"
	"database/sql/driver"
	"fmt"
	"sync"
)

// Driver is a mock implementation of database/sql/driver.Driver
type Driver struct {
	Logf func(string, ...interface{})

	// Expect, if set, must anticipate every call to Open
	Expect *Expect
	// AcceptFunc, if set, decides which DSNs Accepts reports as usable
	AcceptFunc func(dsn string) bool
	// Execer makes connections implement database/sql/driver.Execer and database/sql/driver.Queryer
	Execer bool

	mu         sync.Mutex
	conns      int
	opened     []string
	closed     []string
	statements []string
	connectors int
	released   int
}

// Open opens a new mock connection
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.opened = append(d.opened, dsn)
	if d.Expect != nil {
		ex, err := d.Expect.open(&ExpectedConn{dsn: dsn})
		if err != nil {
			return nil, err
		}
		if ex.err != nil {
			d.logf("failing open: %s: %s", dsn, ex.err)
			return nil, ex.err
		}
	}

	d.conns++
	name := fmt.Sprintf("%s[%d]", dsn, d.conns)
	d.logf("opening: %s", name)
	c := &conn{driver: d, dsn: dsn, name: name}
	if d.Execer {
		return &execerConn{conn: c}, nil
	}
	return c, nil
}

// Accepts reports whether dsn is usable, according to AcceptFunc
func (d *Driver) Accepts(dsn string) bool {
	if d.AcceptFunc == nil {
		return true
	}
	return d.AcceptFunc(dsn)
}

// Opened returns the DSNs passed to Open, in order, including those that failed
func (d *Driver) Opened() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.opened...)
}

// Closed returns the DSNs of connections closed so far, once per call to Close
func (d *Driver) Closed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.closed...)
}

// Statements returns the statements seen by connections, in order, as "prepare: ", "exec: " or "query: " followed by
// the query
func (d *Driver) Statements() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.statements...)
}

// Connectors returns how many connectors ContextDriver has opened, and how many of them were closed
func (d *Driver) Connectors() (opened, closed int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connectors, d.released
}

func (d *Driver) record(kind, query string) {
	d.mu.Lock()
	d.statements = append(d.statements, kind+": "+query)
	d.mu.Unlock()
}

func (d *Driver) closeConn(c *conn) {
	d.mu.Lock()
	d.closed = append(d.closed, c.dsn)
	d.mu.Unlock()
	d.logf("closing: %s", c.name)
}

func (d *Driver) logf(format string, args ...interface{}) {
	if d.Logf != nil {
		d.Logf(format, args...)
	}
}

// ContextDriver is a Driver that also implements database/sql/driver.DriverContext
type ContextDriver struct {
	*Driver
}

// OpenConnector returns a connector that opens dsn on Connect
func (d ContextDriver) OpenConnector(dsn string) (driver.Connector, error) {
	if !d.Accepts(dsn) {
		return nil, fmt.Errorf("sqldrivermock: invalid DSN: %#v", dsn)
	}
	d.mu.Lock()
	d.connectors++
	d.mu.Unlock()
	return &connector{driver: d, dsn: dsn}, nil
}

type connector struct {
	driver ContextDriver
	dsn    string
	closed bool
}

// Close releases the connector; closing twice is an error
func (c *connector) Close() error {
	d := c.driver.Driver
	d.mu.Lock()
	defer d.mu.Unlock()
	if c.closed {
		return fmt.Errorf("sqldrivermock: connector for %#v already closed", c.dsn)
	}
	c.closed = true
	d.released++
	return nil
}

func (c *connector) Connect(ctx context.Context) (driver.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.driver.mu.Lock()
	closed := c.closed
	c.driver.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("sqldrivermock: connect on closed connector for %#v", c.dsn)
	}
	return c.driver.Open(c.dsn)
}

func (c *connector) Driver() driver.Driver {
	return c.driver
}
