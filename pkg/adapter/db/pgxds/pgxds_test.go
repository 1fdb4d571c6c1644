// Copyright (c) 2024-2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pgxds_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momeni/dbscope/internal/test/dbcontainer"
	"github.com/momeni/dbscope/pkg/adapter/db/pgxds"
	"github.com/momeni/dbscope/pkg/core/repo"
	"github.com/momeni/dbscope/pkg/core/scope"
)

func TestPgxPoolScopes(t *testing.T) {
	if !dbcontainer.Available() {
		t.Skip("no container runtime endpoint is reachable")
	}
	ctx := context.Background()
	_, url, dfrs, ok := dbcontainer.New(ctx, 60*time.Second, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	pool, err := pgxds.NewPool(ctx, url, pgxds.WithMaxConns(2))
	require.NoError(t, err)
	t.Run("eager checkout", func(t *testing.T) {
		testEagerCheckout(t, ctx, pool)
	})
	t.Run("cursor scope", func(t *testing.T) {
		testCursorScope(t, ctx, pool)
	})
	t.Run("transaction scope", func(t *testing.T) {
		testTxScope(t, ctx, pool)
	})
	t.Run("close and wait", func(t *testing.T) {
		testCloseWait(t, ctx, pool)
	})
}

func testEagerCheckout(t *testing.T, ctx context.Context, pool *pgxds.Pool) {
	s := scope.Acquire(pool)
	conn, err := s.Get(ctx)
	require.NoError(t, err)
	n, err := conn.Exec(ctx, "SELECT 1")
	assert.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, s.Exit(ctx, false))
}

func testCursorScope(t *testing.T, ctx context.Context, pool *pgxds.Pool) {
	err := scope.Cursor(pool).With(ctx,
		func(ctx context.Context, cur repo.Cursor) error {
			rows, err := cur.Query(ctx, "SELECT generate_series(1, 3)")
			require.NoError(t, err)
			var got []int64
			for rows.Next() {
				var v int64
				require.NoError(t, rows.Scan(&v))
				got = append(got, v)
			}
			rows.Close()
			require.NoError(t, rows.Err())
			assert.Equal(t, []int64{1, 2, 3}, got)
			return nil
		})
	require.NoError(t, err)
}

func testTxScope(t *testing.T, ctx context.Context, pool *pgxds.Pool) {
	table := "dbscope_test_" +
		strings.ReplaceAll(uuid.NewString(), "-", "")
	err := scope.Acquire(pool).With(ctx,
		func(ctx context.Context, conn repo.Conn) error {
			// the failed block must leave no table behind
			err := scope.Begin(conn).With(ctx,
				func(ctx context.Context, tx repo.Tx) error {
					_, err := tx.Exec(
						ctx, "CREATE TABLE "+table+" (id INT)",
					)
					require.NoError(t, err)
					return assert.AnError
				})
			require.ErrorIs(t, err, assert.AnError)

			rows, err := conn.Query(
				ctx,
				"SELECT COUNT(*) FROM pg_tables WHERE tablename = $1",
				table,
			)
			require.NoError(t, err)
			require.True(t, rows.Next())
			var count int64
			require.NoError(t, rows.Scan(&count))
			rows.Close()
			assert.Zero(t, count, "the rolled back table must not exist")

			// the successful block must commit
			err = scope.Begin(conn).With(ctx,
				func(ctx context.Context, tx repo.Tx) error {
					_, err := tx.Exec(
						ctx, "CREATE TABLE "+table+" (id INT)",
					)
					return err
				})
			require.NoError(t, err)
			_, err = conn.Exec(ctx, "DROP TABLE "+table)
			return err
		})
	require.NoError(t, err)
}

func testCloseWait(t *testing.T, ctx context.Context, pool *pgxds.Pool) {
	err := pool.WaitClosed(ctx)
	require.Error(t, err, "waiting before close must be rejected")

	pool.Close()
	ctx2, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	require.NoError(t, pool.WaitClosed(ctx2))

	_, err = pool.Acquire(ctx)
	assert.ErrorIs(t, err, repo.ErrPoolClosed)
}
