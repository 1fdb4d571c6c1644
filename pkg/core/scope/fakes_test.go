package scope_test

import (
	"context"

	"github.com/momeni/dbscope/pkg/core/repo"
)

// callRecorder records the collaborator calls in their invocation
// order, so tests can assert the teardown ordering precisely.
type callRecorder struct {
	calls []string
}

func (r *callRecorder) add(call string) {
	r.calls = append(r.calls, call)
}

// fakePool implements the repo collaborator interfaces family with
// configurable failure injection points. All fakes record their
// calls in the shared callRecorder.
type fakePool struct {
	rec *callRecorder

	acquireErr     error
	releaseErr     error
	openCursorErr  error
	cursorCloseErr error
	commitErr      error
	rollbackErr    error
	waitErr        error
}

func newFakePool() *fakePool {
	return &fakePool{rec: &callRecorder{}}
}

func (p *fakePool) Acquire(_ context.Context) (repo.Conn, error) {
	p.rec.add("pool.acquire")
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return &fakeConn{pool: p}, nil
}

func (p *fakePool) Release(_ context.Context, _ repo.Conn) error {
	p.rec.add("pool.release")
	return p.releaseErr
}

func (p *fakePool) Close() {
	p.rec.add("pool.close")
}

func (p *fakePool) WaitClosed(_ context.Context) error {
	p.rec.add("pool.waitClosed")
	return p.waitErr
}

type fakeConn struct {
	pool *fakePool
}

func (c *fakeConn) OpenCursor(_ context.Context) (repo.Cursor, error) {
	c.pool.rec.add("conn.openCursor")
	if c.pool.openCursorErr != nil {
		return nil, c.pool.openCursorErr
	}
	return &fakeCursor{pool: c.pool}, nil
}

func (c *fakeConn) BeginTx(_ context.Context) (repo.Tx, error) {
	c.pool.rec.add("conn.beginTx")
	return &fakeTx{pool: c.pool, active: true}, nil
}

func (c *fakeConn) Exec(_ context.Context, _ string, _ ...any) (int64, error) {
	c.pool.rec.add("conn.exec")
	return 0, nil
}

func (c *fakeConn) Query(_ context.Context, _ string, _ ...any) (repo.Rows, error) {
	c.pool.rec.add("conn.query")
	return nil, nil
}

func (c *fakeConn) IsConn() {
}

type fakeCursor struct {
	pool *fakePool
}

func (c *fakeCursor) Exec(_ context.Context, _ string, _ ...any) (int64, error) {
	c.pool.rec.add("cursor.exec")
	return 0, nil
}

func (c *fakeCursor) Query(_ context.Context, _ string, _ ...any) (repo.Rows, error) {
	c.pool.rec.add("cursor.query")
	return nil, nil
}

func (c *fakeCursor) Close(_ context.Context) error {
	c.pool.rec.add("cursor.close")
	return c.pool.cursorCloseErr
}

type fakeTx struct {
	pool   *fakePool
	active bool
}

func (t *fakeTx) Exec(_ context.Context, _ string, _ ...any) (int64, error) {
	t.pool.rec.add("tx.exec")
	return 0, nil
}

func (t *fakeTx) Query(_ context.Context, _ string, _ ...any) (repo.Rows, error) {
	t.pool.rec.add("tx.query")
	return nil, nil
}

func (t *fakeTx) Commit(_ context.Context) error {
	t.pool.rec.add("tx.commit")
	t.active = false
	return t.pool.commitErr
}

func (t *fakeTx) Rollback(_ context.Context) error {
	t.pool.rec.add("tx.rollback")
	t.active = false
	return t.pool.rollbackErr
}

func (t *fakeTx) IsActive() bool {
	return t.active
}

func (t *fakeTx) IsTx() {
}
