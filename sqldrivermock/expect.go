package sqldrivermock

import (
	"fmt"
	"regexp"
	"strings"
)

// Expect is a series of expected calls to Driver.Open
type Expect struct {
	expectations []*ExpectedConn
	next         int
}

func (e *Expect) open(conn *ExpectedConn) (*ExpectedConn, error) {
	if len(e.expectations) <= e.next {
		return nil, fmt.Errorf("sqldrivermock: unexpected call to Open(%#v)", conn.dsn)
	}

	ex := e.expectations[e.next]
	if err := ex.fulfill(conn); err != nil {
		return nil, err
	}
	e.next++
	return ex, nil
}

// Open expects a call to driver.Open()
func (e *Expect) Open() *ExpectedConn {
	ex := &ExpectedConn{}
	e.expectations = append(e.expectations, ex)
	return ex
}

// Confirm verifies that all expectations have been met
func (e *Expect) Confirm() error {
	for _, ex := range e.expectations {
		if !ex.fulfilled() {
			return fmt.Errorf("sqldrivermock: unfulfilled expectation: %s", ex)
		}
	}
	return nil
}

func (e *Expect) String() string {
	exStr := make([]string, len(e.expectations))
	for i, ex := range e.expectations {
		exStr[i] = ex.String()
	}
	return fmt.Sprintf("Expect(\n%s\n)", indent(strings.Join(exStr, "\n")))
}

// ExpectedConn is an expected call to Driver.Open
type ExpectedConn struct {
	dsn string
	err error

	fulfilledBy *ExpectedConn
}

func (ec *ExpectedConn) fulfill(ac *ExpectedConn) error {
	if ec.fulfilledBy != nil {
		return fmt.Errorf("sqldrivermock: ExpectedConn already fulfilled")
	}
	if ac.dsn != ec.dsn {
		return fmt.Errorf("sqldrivermock: Open() DSN mismatch: expected %#v; got %#v", ec.dsn, ac.dsn)
	}
	ec.fulfilledBy = ac
	return nil
}

func (ec *ExpectedConn) fulfilled() bool {
	return ec.fulfilledBy != nil
}

func (ec *ExpectedConn) String() string {
	return fmt.Sprintf("Conn{ DSN: %s, Err: %v } %s", ec.dsn, ec.err, fulfilledString(ec.fulfilledBy != nil))
}

// WithDSN sets the expected DSN for the connection
func (ec *ExpectedConn) WithDSN(dsn string) *ExpectedConn {
	ec.dsn = dsn
	return ec
}

// WillError specifies an error that will be returned by driver.Open
func (ec *ExpectedConn) WillError(err error) *ExpectedConn {
	ec.err = err
	return ec
}

var indentRegexp = regexp.MustCompile(`(?m)^`)

func indent(str string) string {
	return indentRegexp.ReplaceAllString(str, "\t")
}

func fulfilledString(fulfilled bool) string {
	if fulfilled {
		return "✓"
	}
	return "∅"
}
