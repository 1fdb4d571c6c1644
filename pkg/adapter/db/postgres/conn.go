package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/momeni/dbscope/pkg/core/repo"
)

// Conn is a dedicated database connection, checked out of a Pool.
// It is not given back to the underlying database/sql pool before
// the Pool.Release call, hence, cursors and transactions opened on
// it observe the same session.
type Conn struct {
	conn *sql.Conn
}

// OpenCursor creates a statement handle over this connection.
func (c *Conn) OpenCursor(_ context.Context) (repo.Cursor, error) {
	return &Cursor{conn: c.conn}, nil
}

// BeginTx starts a transaction with the default isolation level on
// this connection.
func (c *Conn) BeginTx(ctx context.Context) (repo.Tx, error) {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{tx: tx, active: true}, nil
}

func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	res, err := c.conn.ExecContext(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *Conn) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	rows, err := c.conn.QueryContext(ctx, sql, args...)
	return rowsAdapter{rows}, err
}

func (c *Conn) IsConn() {
}
