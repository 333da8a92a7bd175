package sqldrivermock

import (
	"database/sql/driver"
	"io"
)

// rows is always empty
type rows struct{}

func (r *rows) Close() error {
	return nil
}

func (r *rows) Columns() []string {
	return []string{}
}

func (r *rows) Next(values []driver.Value) error {
	return io.EOF
}
