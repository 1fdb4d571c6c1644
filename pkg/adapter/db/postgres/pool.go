package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/momeni/dbscope/pkg/core/repo"
)

// Pool wraps a *gorm.DB and implements the repo.Pool interface by
// checking dedicated connections out of its underlying database/sql
// pool. The embedded *gorm.DB stays available for ORM-level usage.
type Pool struct {
	*gorm.DB
	sdb *sql.DB
}

// NewPool connects to the url database and verifies the connection
// with an acquire/release round trip before returning the pool.
func NewPool(ctx context.Context, url string) (*Pool, error) {
	gdb, err := gorm.Open(postgres.Open(url), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open: %w", err)
	}
	gdb = gdb.Session(&gorm.Session{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: false,
				Colorful:                  true,
				// Set to false in order to log with replaced vars
				ParameterizedQueries: true,
			}),
	})
	sdb, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("obtaining sql.DB: %w", err)
	}
	pool := &Pool{DB: gdb, sdb: sdb}
	c, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("testing connection: %w", err)
	}
	if err := pool.Release(ctx, c); err != nil {
		pool.Close()
		return nil, fmt.Errorf("testing release: %w", err)
	}
	return pool, nil
}

// SetMaxConns bounds the number of connections which may be checked
// out of this pool simultaneously. Acquire blocks while n connections
// are in use, until one of them is released or its ctx is cancelled.
func (p *Pool) SetMaxConns(n int) {
	p.sdb.SetMaxOpenConns(n)
}

// Acquire checks a dedicated connection out of the pool, blocking
// while the pool is saturated until a connection is released or the
// ctx is cancelled.
func (p *Pool) Acquire(ctx context.Context) (repo.Conn, error) {
	c, err := p.sdb.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking a connection out: %w", err)
	}
	return &Conn{conn: c}, nil
}

// Release hands a connection which was obtained from Acquire back to
// the pool. Each acquired connection must be released exactly once;
// handing back a foreign or doubly released connection is rejected
// by the database/sql layer.
func (p *Pool) Release(_ context.Context, c repo.Conn) error {
	cc, ok := c.(*Conn)
	if !ok {
		return fmt.Errorf("connection %T does not belong to this pool", c)
	}
	if err := cc.conn.Close(); err != nil {
		return fmt.Errorf("returning connection to pool: %w", err)
	}
	return nil
}

// Close signals that no further acquisitions are accepted. Already
// checked out connections stay usable and are torn down as they are
// released; WaitClosed may be used to await that teardown.
func (p *Pool) Close() {
	_ = p.sdb.Close()
}

// WaitClosed blocks until every connection of this pool is torn down
// or the ctx is cancelled. It is meaningful after a Close call.
func (p *Pool) WaitClosed(ctx context.Context) error {
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for {
		if p.sdb.Stats().OpenConnections == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

// GORM returns the embedded *gorm.DB instance, configuring it to
// operate on the given ctx context (in a gorm.Session).
func (p *Pool) GORM(ctx context.Context) *gorm.DB {
	return p.DB.WithContext(ctx)
}
