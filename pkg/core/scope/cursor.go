// Copyright (c) 2024-2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scope

import (
	"context"
	"fmt"

	"github.com/momeni/dbscope/pkg/core/cerr"
	"github.com/momeni/dbscope/pkg/core/repo"
)

// CursorScope scopes a cursor together with the connection which it
// is bound to. It owns an inner PoolScope whose lifetime is exactly
// the cursor scope's lifetime: acquisition checks a connection out
// and opens a cursor on it, exit closes the cursor first and then
// exits the inner connection scope, in that fixed order. Releasing
// the connection before the cursor is fully closed would let the
// pool hand out a connection which still holds live cursor state.
type CursorScope struct {
	Scoped[repo.Cursor]
	conn *PoolScope
}

// Cursor creates a scope which checks a connection out of pool and
// opens a cursor on it. The returned scope is inert until its
// acquisition is triggered by Get, Enter, or With.
func Cursor(pool repo.Pool) *CursorScope {
	cs := &CursorScope{conn: Acquire(pool)}
	cs.init(cs.open, cs.close)
	return cs
}

// open acquires the inner connection scope and then opens the cursor.
// If the cursor cannot be opened, the already checked out connection
// is handed back right away, so the composite acquisition either
// yields a usable cursor or leaves nothing behind to release.
func (cs *CursorScope) open(ctx context.Context) (repo.Cursor, error) {
	c, err := cs.conn.Enter(ctx)
	if err != nil {
		return nil, err
	}
	cur, err := c.OpenCursor(ctx)
	if err != nil {
		err = cerr.Acquisition(fmt.Errorf("opening cursor: %w", err))
		if err2 := cs.conn.Exit(ctx, true); err2 != nil {
			return nil, fmt.Errorf("%w; %w", err, err2)
		}
		return nil, err
	}
	return cur, nil
}

// close tears the cursor down and then exits the inner connection
// scope. Both stages are attempted regardless of the first stage's
// outcome; when both fail, the cursor-close error is reported first
// with the connection-release error chained after it.
func (cs *CursorScope) close(
	ctx context.Context, failed bool, cur repo.Cursor,
) error {
	var err error
	if err = cur.Close(ctx); err != nil {
		err = cerr.Teardown("cursor close", err)
	}
	if err2 := cs.conn.Exit(ctx, failed); err2 != nil {
		if err != nil {
			return fmt.Errorf("%w; %w", err, err2)
		}
		return err2
	}
	return err
}
