package galera_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codership/galera"
	"github.com/codership/galera/sqldrivermock"
)

type queryer interface {
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
}

type preparer interface {
	PrepareContext(context.Context, string) (*sql.Stmt, error)
}

func TestDriver(t *testing.T) {
	mock := &sqldrivermock.Driver{Logf: t.Logf}
	d := galera.New(mock, galera.ParseHosts("h1,h2"), galera.WithLog(func(v string) { t.Log(v) }))
	dname := t.Name()
	sql.Register(dname, d)

	db, err := sql.Open(dname, "jdbc:galera:mysql://<galera-host>/?user=test")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer db.Close()

	// Set connection limits for determinism
	db.SetMaxOpenConns(1)

	// Force a connection
	conn, err := db.Conn(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer conn.Close()

	if err := conn.PingContext(context.Background()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	testStatements(t, conn)
	testPreparedStatements(t, conn)

	// Transaction
	tx, err := conn.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	testStatements(t, tx)
	testPreparedStatements(t, tx)
	tx.Rollback()

	if _, err := conn.BeginTx(context.Background(), &sql.TxOptions{ReadOnly: true}); !errors.Is(err, galera.ErrConnBeginTxUnsupported) {
		t.Errorf("expected ErrConnBeginTxUnsupported for read only transaction, got: %v", err)
	}

	if opened := mock.Opened(); len(opened) != 1 || opened[0] != "jdbc:mysql://h1/?user=test" {
		t.Errorf("unexpected delegate connections: %v", opened)
	}
}

func testStatements(t *testing.T, q queryer) {
	// Query
	t.Log("single query")
	rows, err := q.QueryContext(context.Background(), "SELECT")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	rows.Close()

	// Exec
	t.Log("single exec")
	_, err = q.ExecContext(context.Background(), "UPDATE")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
}

func testPreparedStatements(t *testing.T, p preparer) {
	// Prepare
	t.Log("reused statement: prepare")
	stmt, err := p.PrepareContext(context.Background(), "SELECT")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer stmt.Close()

	// Prepared Query
	t.Log("reused statement: query")
	rows, err := stmt.Query()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	rows.Close()

	// Prepared Exec
	t.Log("reused statement: exec")
	_, err = stmt.Exec()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
}

func TestConnectRoundRobin(t *testing.T) {
	ex := &sqldrivermock.Expect{}
	for _, host := range []string{"h1", "h2", "h1", "h2"} {
		ex.Open().WithDSN("jdbc:mysql://" + host + "/?user=test")
	}
	mock := &sqldrivermock.Driver{Logf: t.Logf, Expect: ex}
	hosts := galera.ParseHosts("h1,h2")
	d := galera.New(mock, hosts)

	start := hosts.Cursor()
	for i := 0; i < 4; i++ {
		c, err := d.Open("jdbc:galera:mysql://<galera-host>/?user=test")
		require.NoError(t, err)
		defer c.Close()
	}

	require.NoError(t, ex.Confirm())
	assert.Equal(t, start, hosts.Cursor())
	assert.Equal(t, map[string]int{"h1": 2, "h2": 2}, hosts.Snapshot())
}

func TestConnectPassthrough(t *testing.T) {
	mock := &sqldrivermock.Driver{Logf: t.Logf}
	hosts := galera.ParseHosts("")
	d := galera.New(mock, hosts)

	c, err := d.Open("jdbc:galera:mysql://<galera-host>/?user=test")
	require.NoError(t, err)

	assert.Equal(t, []string{"jdbc:mysql://<galera-host>/?user=test"}, mock.Opened())
	assert.Empty(t, hosts.Snapshot())

	require.NoError(t, c.Close())
	assert.Equal(t, []string{"jdbc:mysql://<galera-host>/?user=test"}, mock.Closed())
	assert.Empty(t, hosts.Snapshot())
}

func TestConnectFailure(t *testing.T) {
	errRefused := errors.New("connection refused")
	ex := &sqldrivermock.Expect{}
	ex.Open().WithDSN("jdbc:mysql://h1/").WillError(errRefused)
	ex.Open().WithDSN("jdbc:mysql://h2/")
	mock := &sqldrivermock.Driver{Logf: t.Logf, Expect: ex}
	hosts := galera.ParseHosts("h1,h2")
	d := galera.New(mock, hosts)

	_, err := d.Open("jdbc:galera:mysql://<galera-host>/")
	assert.Equal(t, errRefused, err, "delegate errors are returned unwrapped")
	assert.Equal(t, 1, hosts.Cursor(), "failed connects still consume the host")
	assert.Zero(t, hosts.Active("h1"))

	c, err := d.Open("jdbc:galera:mysql://<galera-host>/")
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, 1, hosts.Active("h2"))
	require.NoError(t, ex.Confirm())
}

func TestCloseIdempotent(t *testing.T) {
	mock := &sqldrivermock.Driver{Logf: t.Logf}
	hosts := galera.ParseHosts("a,b")
	d := galera.New(mock, hosts)

	conns := make([]interface{ Close() error }, 3)
	for i := range conns {
		c, err := d.Open("jdbc:galera:mysql://<galera-host>/")
		require.NoError(t, err)
		conns[i] = c
	}
	assert.Equal(t, 2, hosts.Active("a"))
	assert.Equal(t, 1, hosts.Active("b"))

	require.NoError(t, conns[0].Close())
	require.NoError(t, conns[0].Close())

	assert.Equal(t, 1, hosts.Active("a"), "second close must not release the host again")
	assert.Equal(t, []string{"jdbc:mysql://a/", "jdbc:mysql://a/"}, mock.Closed(), "every close is forwarded")

	require.NoError(t, conns[1].Close())
	require.NoError(t, conns[2].Close())
	assert.Empty(t, hosts.Snapshot())
}

func TestConnectContext(t *testing.T) {
	mock := &sqldrivermock.Driver{Logf: t.Logf}
	d := galera.New(sqldrivermock.ContextDriver{Driver: mock}, galera.ParseHosts("h1"))

	c, err := d.OpenConnector("jdbc:galera:mysql://<galera-host>/")
	require.NoError(t, err)
	assert.Equal(t, d, c.Driver())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Connect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mock.Opened(), "cancelled connects never reach the delegate")
	assert.Zero(t, d.Hosts().Active("h1"))

	conn, err := c.Connect(context.Background())
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, []string{"jdbc:mysql://h1/"}, mock.Opened())
}

func TestConnectConcurrent(t *testing.T) {
	const workers, perWorker = 8, 25

	mock := &sqldrivermock.Driver{}
	hosts := galera.ParseHosts("a,b,c,d")
	db := sql.OpenDB(mustConnector(t, galera.New(mock, hosts), "jdbc:galera:mysql://<galera-host>/"))
	defer db.Close()
	db.SetMaxIdleConns(0)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				c, err := db.Conn(context.Background())
				if err != nil {
					t.Errorf("unexpected error: %s", err)
					return
				}
				c.PingContext(context.Background())
				c.Close()
			}
		}()
	}
	wg.Wait()

	counts := map[string]int{}
	for _, dsn := range mock.Opened() {
		counts[dsn]++
	}
	total := 0
	for _, host := range hosts.List() {
		total += counts[fmt.Sprintf("jdbc:mysql://%s/", host)]
	}
	assert.Equal(t, len(mock.Opened()), total, "every connection is routed to a configured host")

	// each host is handed out in turn, so no host gets more than one connection more than any other
	for _, host := range hosts.List() {
		n := counts[fmt.Sprintf("jdbc:mysql://%s/", host)]
		assert.InDelta(t, total/hosts.Len(), n, 1, "host %s", host)
	}
	assert.Empty(t, hosts.Snapshot())
}

func mustConnector(t *testing.T, d *galera.Driver, dsn string) driver.Connector {
	t.Helper()
	c, err := d.OpenConnector(dsn)
	require.NoError(t, err)
	return c
}
