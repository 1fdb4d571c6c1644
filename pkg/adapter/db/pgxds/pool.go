package pgxds

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/momeni/dbscope/pkg/core/repo"
)

// Pool wraps a *pgxpool.Pool and implements the repo.Pool interface.
type Pool struct {
	pool *pgxpool.Pool

	mu      sync.Mutex
	closing bool
	done    chan struct{}
}

// Option configures the pool during its construction.
type Option func(*pgxpool.Config)

// WithMaxConns bounds the number of simultaneously checked out
// connections. Zero keeps the pgxpool default.
func WithMaxConns(n int32) Option {
	return func(cfg *pgxpool.Config) {
		if n > 0 {
			cfg.MaxConns = n
		}
	}
}

// NewPool connects to the connString database, verifying the
// connection with a ping before returning the pool.
func NewPool(
	ctx context.Context, connString string, opts ...Option,
) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	for _, opt := range opts {
		opt(cfg)
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("testing connection: %w", err)
	}
	return &Pool{pool: p, done: make(chan struct{})}, nil
}

// Acquire checks a connection out of the pool, blocking while the
// pool is saturated until a connection is released or the ctx is
// cancelled. After Close has been called, it reports
// repo.ErrPoolClosed without consulting the pool.
func (p *Pool) Acquire(ctx context.Context) (repo.Conn, error) {
	p.mu.Lock()
	closing := p.closing
	p.mu.Unlock()
	if closing {
		return nil, repo.ErrPoolClosed
	}
	c, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking a connection out: %w", err)
	}
	return &Conn{conn: c}, nil
}

// Release hands a connection which was obtained from Acquire back to
// the pool. Each acquired connection must be released exactly once.
func (p *Pool) Release(_ context.Context, c repo.Conn) error {
	cc, ok := c.(*Conn)
	if !ok {
		return fmt.Errorf("connection %T does not belong to this pool", c)
	}
	cc.conn.Release()
	return nil
}

// Close signals that no further acquisitions are accepted and starts
// tearing the pooled connections down in the background, since the
// pgxpool close blocks until every checked out connection has been
// released. WaitClosed awaits the completion of that teardown.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closing {
		return
	}
	p.closing = true
	go func() {
		p.pool.Close()
		close(p.done)
	}()
}

// WaitClosed blocks until the teardown which was started by Close
// completes or the ctx is cancelled. Calling it before Close is a
// usage error since no teardown would be in progress to wait for.
func (p *Pool) WaitClosed(ctx context.Context) error {
	p.mu.Lock()
	closing := p.closing
	p.mu.Unlock()
	if !closing {
		return fmt.Errorf("pool is not closing; call Close first")
	}
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
