package sqldrivermock

type tx struct {
	conn *conn
}

func (t *tx) Commit() error {
	t.conn.driver.logf("committing on %s", t.conn.name)
	return nil
}

func (t *tx) Rollback() error {
	t.conn.driver.logf("rolling back on %s", t.conn.name)
	return nil
}
