/*
Package galera provides an implementation of "database/sql/driver".Driver, distributing new connections across the
nodes of a Galera cluster in round robin order.

Goal

To spread connections over equivalent database nodes without userland changes in database usage.

Basics

galera achieves its goal by being an implementation of database/sql/driver.Driver. It doesn't provide any direct
database driver facilities, and instead wraps around a delegate driver which provides the concrete implementation:

	hosts := galera.ParseHosts("10.0.0.5,10.0.0.6,10.0.0.7")
	sql.Register("galera", galera.New(mysql.MySQLDriver{}, hosts, galera.WithTemplate(galera.Template{
		Scheme:      "galera:",
		Tag:         "galera:",
		Placeholder: galera.DefaultPlaceholder,
	})))
	db, _ := sql.Open("galera", "galera:root@tcp(<galera-host>:3306)/test")

Alternatively Install reads the hosts and the name of the delegate driver from a Config, usually loaded from the
GALERA_HOSTS and GALERA_DBMS_DRIVER environment variables.

DSNs

A templated DSN carries a routing scheme (by default "jdbc:galera:") and a placeholder ("<galera-host>").
For every new connection the routing tag ("galera:") is removed and the placeholder is replaced by the next host:

	jdbc:galera:mysql://<galera-host>/?user=test  ->  jdbc:mysql://10.0.0.5/?user=test

If no hosts are configured the placeholder is left in place and the DSN is passed to the delegate with only the
tag removed.

Routing

Every connect takes the next host, whether or not the delegate then manages to connect to it. There are no retries:
errors from the delegate driver are returned unchanged.

Connection Pooling

Package "database/sql" provides a builtin connection pool when sql.Open() is used. The pool sits above this driver, so
hosts are picked only when the pool opens a new physical connection, not per query. Use db.SetConnMaxLifetime() to
have long lived pools rebalance over time.

The driver counts open connections per host (see Hosts.Active); a connection is released from its host exactly once,
however many times it is closed.
*/
package galera
