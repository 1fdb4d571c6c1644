// Copyright (c) 2024-2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scope

import (
	"context"

	"github.com/momeni/dbscope/pkg/core/cerr"
	"github.com/momeni/dbscope/pkg/core/repo"
)

// PoolScope scopes the checkout of one connection from a pool.
// Acquisition asks the pool for a free connection, blocking while the
// pool is out of capacity, and exit hands the connection back with
// exactly one Release call. The failure signal of the exit does not
// affect the teardown; a connection is released the same way on the
// success and failure paths.
type PoolScope struct {
	Scoped[repo.Conn]
	pool repo.Pool
}

// Acquire creates a scope for checking one connection out of pool.
// The returned scope is inert until its acquisition is triggered by
// Get, Enter, or With.
func Acquire(pool repo.Pool) *PoolScope {
	ps := &PoolScope{pool: pool}
	ps.init(pool.Acquire, ps.release)
	return ps
}

func (ps *PoolScope) release(
	ctx context.Context, _ bool, c repo.Conn,
) error {
	if err := ps.pool.Release(ctx, c); err != nil {
		return cerr.Teardown("release", err)
	}
	return nil
}

// LifetimeScope scopes the lifetime of a pool itself, instead of a
// single connection borrowed from it. Acquisition opens the pool and
// exit closes it, waiting until all outstanding connections are
// returned and torn down before the scope is considered left.
type LifetimeScope struct {
	Scoped[repo.Pool]
}

// Lifetime creates a scope which governs the lifetime of the pool
// that the open task constructs. On exit, the pool is closed and the
// exit blocks on WaitClosed for the teardown of all connections.
func Lifetime(open AcquireFunc[repo.Pool]) *LifetimeScope {
	ls := &LifetimeScope{}
	ls.init(open, closePool)
	return ls
}

func closePool(ctx context.Context, _ bool, p repo.Pool) error {
	p.Close()
	if err := p.WaitClosed(ctx); err != nil {
		return cerr.Teardown("pool close", err)
	}
	return nil
}
