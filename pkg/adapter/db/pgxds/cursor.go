package pgxds

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/momeni/dbscope/pkg/core/repo"
)

// Cursor is a statement handle over a checked out connection. The
// rows of its last Query call stay open on the connection until the
// next execution or until the cursor is closed. The owning
// connection must not be released while the cursor is open, since
// pgx cannot multiplex a pending result set with other statements.
type Cursor struct {
	conn *pgxpool.Conn
	rows pgx.Rows
}

func (c *Cursor) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	c.discard()
	ct, err := c.conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (c *Cursor) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	c.discard()
	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	c.rows = rows
	return rows, nil
}

// Close discards the pending result set, if any, making the owning
// connection safe to release. The pgx rows close reports pending
// errors through Err, not through Close, hence, Close never fails
// for this adapter.
func (c *Cursor) Close(_ context.Context) error {
	c.discard()
	return nil
}

func (c *Cursor) discard() {
	if c.rows == nil {
		return
	}
	c.rows.Close()
	c.rows = nil
}
