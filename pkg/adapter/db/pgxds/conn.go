package pgxds

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/momeni/dbscope/pkg/core/repo"
)

// Conn is a connection checked out of a Pool. It is not given back
// before the Pool.Release call, hence, cursors and transactions
// opened on it observe the same session.
type Conn struct {
	conn *pgxpool.Conn
}

// OpenCursor creates a statement handle over this connection.
func (c *Conn) OpenCursor(_ context.Context) (repo.Cursor, error) {
	return &Cursor{conn: c.conn}, nil
}

// BeginTx starts a transaction with the default isolation level on
// this connection.
func (c *Conn) BeginTx(ctx context.Context) (repo.Tx, error) {
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{tx: tx, active: true}, nil
}

func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	ct, err := c.conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (c *Conn) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	// pgx.Rows satisfies the repo.Rows interface natively.
	return c.conn.Query(ctx, sql, args...)
}

func (c *Conn) IsConn() {
}
