package galera

import "strings"

const (
	// DefaultScheme is the prefix a DSN must carry to be routed by a Driver using DefaultTemplate
	DefaultScheme = "jdbc:galera:"
	// DefaultTag is the marker removed from a DSN before it is handed to the delegate driver
	DefaultTag = "galera:"
	// DefaultPlaceholder stands in for the host segment of a templated DSN
	DefaultPlaceholder = "<galera-host>"
)

// DefaultTemplate matches DSNs of the form "jdbc:galera:mysql://<galera-host>/?user=test"
var DefaultTemplate = Template{Scheme: DefaultScheme, Tag: DefaultTag, Placeholder: DefaultPlaceholder}

// Template describes how a templated DSN is recognised and rewritten into one the delegate driver understands.
//
// For native go-sql-driver/mysql DSNs a template such as
//
//	Template{Scheme: "galera:", Tag: "galera:", Placeholder: "<galera-host>"}
//
// turns "galera:root@tcp(<galera-host>:3306)/test" into "root@tcp(10.0.0.5:3306)/test".
type Template struct {
	Scheme      string
	Tag         string
	Placeholder string
}

// Routed reports whether dsn carries the routing scheme
func (t Template) Routed(dsn string) bool {
	return strings.HasPrefix(dsn, t.Scheme)
}

// Strip removes the routing tag from dsn, leaving the delegate driver's native form
func (t Template) Strip(dsn string) string {
	if t.Tag == "" {
		return dsn
	}
	return strings.Replace(dsn, t.Tag, "", 1)
}

// Resolve strips the routing tag and substitutes host for the placeholder
func (t Template) Resolve(dsn, host string) string {
	dsn = t.Strip(dsn)
	if t.Placeholder == "" {
		return dsn
	}
	return strings.Replace(dsn, t.Placeholder, host, 1)
}

// Passthrough is the DSN used when there is no host to route to: the placeholder is left as-is
func (t Template) Passthrough(dsn string) string {
	return t.Strip(dsn)
}
