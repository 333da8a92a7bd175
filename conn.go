package galera

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
)

// ErrConnBeginTxUnsupported is provided when conn.BeginTx() is used with options but not supported by the
// underlying driver
var ErrConnBeginTxUnsupported = errors.New("galera: driver doesn't support BeginTx")

// ErrNamedParametersNotSupported is provided when named parameters are used but unsupported by the underlying driver
var ErrNamedParametersNotSupported = errors.New("galera: driver does not support the use of Named Parameters")

// conn is a delegate connection routed to a single host.
//
// Everything except Close is forwarded unchanged; Close releases the host exactly once.
type conn struct {
	driver.Conn
	driver *Driver
	id     string

	mu   sync.Mutex
	host string
}

var (
	_ driver.Conn               = (*conn)(nil)
	_ driver.ConnPrepareContext = (*conn)(nil)
	_ driver.ConnBeginTx        = (*conn)(nil)
	_ driver.ExecerContext      = (*conn)(nil)
	_ driver.QueryerContext     = (*conn)(nil)
	_ driver.Pinger             = (*conn)(nil)
	_ driver.SessionResetter    = (*conn)(nil)
	_ driver.Validator          = (*conn)(nil)
	_ driver.NamedValueChecker  = (*conn)(nil)
)

// Close releases the host the connection was routed to, then closes the underlying connection
func (c *conn) Close() error {
	c.mu.Lock()
	host := c.host
	c.host = ""
	c.mu.Unlock()

	if host != "" {
		c.driver.release(c, host)
	}
	return c.Conn.Close()
}

// PrepareContext prepares a statement on the underlying connection
func (c *conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if p, ok := c.Conn.(driver.ConnPrepareContext); ok {
		return p.PrepareContext(ctx, query)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return c.Conn.Prepare(query)
}

// BeginTx starts and returns a new transaction
func (c *conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if b, ok := c.Conn.(driver.ConnBeginTx); ok {
		return b.BeginTx(ctx, opts)
	}
	if opts.ReadOnly || opts.Isolation != driver.IsolationLevel(sql.LevelDefault) {
		return nil, ErrConnBeginTxUnsupported
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return c.Conn.Begin()
}

// ExecContext attempts to fast-path conn.ExecContext() against the underlying connection
func (c *conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if e, ok := c.Conn.(driver.ExecerContext); ok {
		return e.ExecContext(ctx, query, args)
	}
	if e, ok := c.Conn.(driver.Execer); ok {
		values, err := namedValuesToValues(args)
		if err != nil {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return e.Exec(query, values)
	}
	return nil, driver.ErrSkip
}

// QueryContext attempts to fast-path conn.QueryContext() against the underlying connection
func (c *conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if q, ok := c.Conn.(driver.QueryerContext); ok {
		return q.QueryContext(ctx, query, args)
	}
	if q, ok := c.Conn.(driver.Queryer); ok {
		values, err := namedValuesToValues(args)
		if err != nil {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return q.Query(query, values)
	}
	return nil, driver.ErrSkip
}

// Ping verifies the underlying connection, if the driver supports it
func (c *conn) Ping(ctx context.Context) error {
	if p, ok := c.Conn.(driver.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *conn) ResetSession(ctx context.Context) error {
	if r, ok := c.Conn.(driver.SessionResetter); ok {
		return r.ResetSession(ctx)
	}
	return nil
}

func (c *conn) IsValid() bool {
	if v, ok := c.Conn.(driver.Validator); ok {
		return v.IsValid()
	}
	return true
}

func (c *conn) CheckNamedValue(nv *driver.NamedValue) error {
	if n, ok := c.Conn.(driver.NamedValueChecker); ok {
		return n.CheckNamedValue(nv)
	}
	return driver.ErrSkip
}

func namedValuesToValues(named []driver.NamedValue) ([]driver.Value, error) {
	values := make([]driver.Value, len(named))
	for i, n := range named {
		if n.Name != "" {
			return nil, ErrNamedParametersNotSupported
		}
		values[i] = n.Value
	}
	return values, nil
}
