package galera_test

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"github.com/codership/galera"
	"github.com/codership/galera/sqldrivermock"
)

func TestAccepts(t *testing.T) {
	var asked []string
	mock := &sqldrivermock.Driver{AcceptFunc: func(dsn string) bool {
		asked = append(asked, dsn)
		return dsn == "jdbc:mysql://host/"
	}}
	d := galera.New(mock, galera.ParseHosts("h1"))

	assert.True(t, d.Accepts("jdbc:galera:mysql://host/"))
	assert.False(t, d.Accepts("jdbc:galera:postgresql://host/"))
	assert.False(t, d.Accepts("jdbc:mysql://host/"), "DSNs without the routing scheme are never accepted")
	assert.Equal(t, []string{"jdbc:mysql://host/", "jdbc:postgresql://host/"}, asked)

	assert.Zero(t, d.Hosts().Cursor(), "Accepts never picks a host")
	assert.Empty(t, mock.Opened())
}

func TestAcceptsMySQL(t *testing.T) {
	d := galera.New(mysql.MySQLDriver{}, galera.ParseHosts("10.0.0.5"), galera.WithTemplate(galera.Template{
		Scheme:      "galera:",
		Tag:         "galera:",
		Placeholder: galera.DefaultPlaceholder,
	}))

	assert.True(t, d.Accepts("galera:root@tcp(<galera-host>:3306)/test"))
	assert.False(t, d.Accepts("galera:root@tcp(<galera-host>:3306)"), "rejected by the mysql DSN parser")
	assert.False(t, d.Accepts("root@tcp(<galera-host>:3306)/test"))
}

func TestAcceptsClosesConnector(t *testing.T) {
	mock := &sqldrivermock.Driver{AcceptFunc: func(dsn string) bool { return dsn == "jdbc:mysql://host/" }}
	d := galera.New(sqldrivermock.ContextDriver{Driver: mock}, galera.ParseHosts("h1"))

	assert.True(t, d.Accepts("jdbc:galera:mysql://host/"))
	assert.False(t, d.Accepts("jdbc:galera:postgresql://host/"))

	opened, closed := mock.Connectors()
	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, closed, "the connector opened to check the DSN is closed again")
	assert.Empty(t, mock.Opened())
}

func TestAcceptsPlainDriver(t *testing.T) {
	d := galera.New(plainDriver{}, nil)
	assert.True(t, d.Accepts("jdbc:galera:anything"))
	assert.Equal(t, plainDriver{}, d.Parent())
}
