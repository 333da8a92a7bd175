package galera

import (
	"database/sql"
	"database/sql/driver"
	"slices"
)

// Lookup finds a driver previously registered with "database/sql" under name.
//
// Driver packages register themselves when imported, e.g. `import _ "github.com/go-sql-driver/mysql"`.
// "database/sql" only hands out a driver through sql.Open, which makes a DriverContext driver parse a DSN; an empty
// DSN is tried first, then each of dsns, until the driver accepts one.
func Lookup(name string, dsns ...string) (driver.Driver, error) {
	if name == "" {
		return nil, ConfigError{Reason: "no delegate driver name given"}
	}
	if !slices.Contains(sql.Drivers(), name) {
		return nil, ConfigError{Reason: "unknown delegate driver " + name}
	}

	var err error
	for _, dsn := range append([]string{""}, dsns...) {
		var db *sql.DB
		// sql.Open only resolves the driver; no connection is made
		if db, err = sql.Open(name, dsn); err == nil {
			defer db.Close()
			return db.Driver(), nil
		}
	}
	return nil, ConfigError{Reason: "cannot instantiate delegate driver " + name, Err: err}
}

// Register makes d available to sql.Open under name. Like sql.Register, it panics if name is already taken.
func Register(name string, d *Driver) {
	sql.Register(name, d)
}

// Install sets up a Driver from cfg, delegating to the driver registered as cfg.Driver, and registers it with
// "database/sql" as cfg.Name
func Install(cfg *Config, opts ...Option) (*Driver, error) {
	tmpl := cfg.Template()
	hosts := ParseHosts(cfg.Hosts)

	var dsns []string
	if cfg.DSN != "" {
		dsns = append(dsns, tmpl.Passthrough(cfg.DSN))
		if list := hosts.List(); len(list) > 0 {
			dsns = append(dsns, tmpl.Resolve(cfg.DSN, list[0]))
		}
	}
	delegate, err := Lookup(cfg.Driver, dsns...)
	if err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = DefaultDriverName
	}

	opts = append([]Option{WithTemplate(tmpl)}, opts...)
	d := New(delegate, hosts, opts...)
	d.debugf("delegating to %s (%T) over %d hosts", cfg.Driver, delegate, d.hosts.Len())
	Register(name, d)
	return d, nil
}
