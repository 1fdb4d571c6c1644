package repo

import (
	"context"
	"errors"
)

// ErrPoolClosed is reported by Acquire when the pool has been closed
// and no further connections may be checked out of it.
var ErrPoolClosed = errors.New("pool is closed")

// ErrPoolExhausted is reported by Acquire when the pool has no free
// connection and refuses to wait (or waited past its own deadline).
var ErrPoolExhausted = errors.New("pool is exhausted")

// Pool represents a pool of database connections.
// Acquire blocks, observing the ctx, until a free connection can be
// checked out. Every successfully acquired connection must be handed
// back with exactly one Release call.
// Close signals that no further acquisitions are accepted, while
// WaitClosed blocks until all outstanding connections are returned
// and torn down. The wait/close split allows a caller to initiate the
// shutdown and then await its completion separately.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
	Release(ctx context.Context, c Conn) error
	Close()
	WaitClosed(ctx context.Context) error
}
