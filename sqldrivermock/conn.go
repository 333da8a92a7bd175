package sqldrivermock

import (
	"context"
	"database/sql/driver"
	"fmt"
)

type conn struct {
	driver *Driver
	dsn    string
	name   string
	stmts  int
}

func (c *conn) Begin() (driver.Tx, error) {
	c.driver.logf("beginning transaction on %s", c.name)
	return &tx{conn: c}, nil
}

func (c *conn) Close() error {
	c.driver.closeConn(c)
	return nil
}

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	c.stmts++
	name := fmt.Sprintf("%s.Prepared[%d]", c.name, c.stmts)
	c.driver.logf("preparing %s: %#v", name, query)
	c.driver.record("prepare", query)
	return &stmt{conn: c, name: name}, nil
}

func (c *conn) Ping(ctx context.Context) error {
	c.driver.logf("pinging %s", c.name)
	return ctx.Err()
}

// execerConn runs statements directly, without preparing them
type execerConn struct {
	*conn
}

func (c *execerConn) Exec(query string, args []driver.Value) (driver.Result, error) {
	c.driver.logf("execing on %s: %#v", c.name, query)
	c.driver.record("exec", query)
	return result{}, nil
}

func (c *execerConn) Query(query string, args []driver.Value) (driver.Rows, error) {
	c.driver.logf("querying on %s: %#v", c.name, query)
	c.driver.record("query", query)
	return &rows{}, nil
}
