package postgres

import (
	"context"
	"database/sql"

	"github.com/momeni/dbscope/pkg/core/repo"
)

// Cursor is a statement handle over a dedicated connection. The rows
// of its last Query call stay open on the connection until the next
// execution or until the cursor is closed, mirroring how a database
// cursor keeps its pending result set on the session. The owning
// connection must not be released while the cursor is open.
type Cursor struct {
	conn *sql.Conn
	rows *sql.Rows
}

func (c *Cursor) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if err := c.discard(); err != nil {
		return 0, err
	}
	res, err := c.conn.ExecContext(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *Cursor) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	if err := c.discard(); err != nil {
		return nil, err
	}
	rows, err := c.conn.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	c.rows = rows
	return rowsAdapter{rows}, nil
}

// Close discards the pending result set, if any, making the owning
// connection safe to release.
func (c *Cursor) Close(_ context.Context) error {
	return c.discard()
}

func (c *Cursor) discard() error {
	if c.rows == nil {
		return nil
	}
	rows := c.rows
	c.rows = nil
	return rows.Close()
}
