// Copyright (c) 2024-2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scope_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momeni/dbscope/pkg/core/cerr"
	"github.com/momeni/dbscope/pkg/core/repo"
	"github.com/momeni/dbscope/pkg/core/scope"
)

func TestSingleAcquisition(t *testing.T) {
	ctx := context.Background()
	p := newFakePool()
	s := scope.Acquire(p)
	conn, err := s.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, conn)

	_, err = s.Enter(ctx)
	var uerr *cerr.UsageError
	assert.ErrorAs(t, err, &uerr, "second trigger must be rejected")
	_, err = s.Get(ctx)
	assert.ErrorAs(t, err, &uerr, "eager re-trigger must be rejected")
	assert.Equal(t, []string{"pool.acquire"}, p.rec.calls,
		"no second acquisition may be performed")

	require.NoError(t, s.Exit(ctx, false))
	assert.Equal(t, []string{"pool.acquire", "pool.release"}, p.rec.calls)
}

func TestIdempotentExit(t *testing.T) {
	ctx := context.Background()
	p := newFakePool()
	s := scope.Acquire(p)
	_, err := s.Enter(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Exit(ctx, false))
	require.NoError(t, s.Exit(ctx, false), "second exit must be a no-op")
	assert.Equal(t, []string{"pool.acquire", "pool.release"}, p.rec.calls,
		"the connection must not be released twice")
}

func TestExitAfterFailedAcquisition(t *testing.T) {
	ctx := context.Background()
	p := newFakePool()
	p.acquireErr = repo.ErrPoolExhausted
	s := scope.Acquire(p)

	_, err := s.Get(ctx)
	var aerr *cerr.AcquisitionError
	require.ErrorAs(t, err, &aerr)
	assert.ErrorIs(t, err, repo.ErrPoolExhausted,
		"the collaborator error must stay matchable")
	assert.False(t, s.Active())

	require.NoError(t, s.Exit(ctx, true))
	assert.Equal(t, []string{"pool.acquire"}, p.rec.calls,
		"exit after a failed acquisition must not call collaborators")
}

func TestExitWithoutAcquisition(t *testing.T) {
	ctx := context.Background()
	p := newFakePool()
	s := scope.Acquire(p)
	require.NoError(t, s.Exit(ctx, false))
	assert.Empty(t, p.rec.calls)
}

func TestTeardownFailureStillClears(t *testing.T) {
	ctx := context.Background()
	p := newFakePool()
	p.releaseErr = errors.New("release refused")
	s := scope.Acquire(p)
	_, err := s.Enter(ctx)
	require.NoError(t, err)

	err = s.Exit(ctx, false)
	var terr *cerr.TeardownError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "release", terr.Stage)
	assert.False(t, s.Active(), "handle must be cleared despite the failure")

	require.NoError(t, s.Exit(ctx, false), "exit stays idempotent")
	assert.Equal(t, []string{"pool.acquire", "pool.release"}, p.rec.calls)
}

func TestWithReturnsHandlerErrorUnchanged(t *testing.T) {
	ctx := context.Background()
	p := newFakePool()
	boom := errors.New("boom")

	err := scope.Acquire(p).With(ctx,
		func(_ context.Context, _ repo.Conn) error {
			return boom
		})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"pool.acquire", "pool.release"}, p.rec.calls,
		"the connection must be released on the failure path too")
}

func TestWithRecoversPanic(t *testing.T) {
	ctx := context.Background()
	p := newFakePool()

	err := scope.Acquire(p).With(ctx,
		func(_ context.Context, _ repo.Conn) error {
			panic("unexpected condition")
		})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.Equal(t, []string{"pool.acquire", "pool.release"}, p.rec.calls,
		"the connection must be released when the handler panics")
}

func TestLifetimeScope(t *testing.T) {
	ctx := context.Background()
	p := newFakePool()

	ls := scope.Lifetime(func(_ context.Context) (repo.Pool, error) {
		return p, nil
	})
	err := ls.With(ctx, func(_ context.Context, got repo.Pool) error {
		assert.Same(t, p, got)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"pool.close", "pool.waitClosed"}, p.rec.calls,
		"exit must close the pool and await its teardown")
}

func TestCustomScope(t *testing.T) {
	ctx := context.Background()
	rec := &callRecorder{}
	s := scope.New(
		func(_ context.Context) (int, error) {
			rec.add("acquire")
			return 42, nil
		},
		func(_ context.Context, failed bool, r int) error {
			assert.True(t, failed)
			assert.Equal(t, 42, r)
			rec.add("teardown")
			return nil
		},
	)
	r, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, r)
	assert.True(t, s.Active())
	require.NoError(t, s.Exit(ctx, true))
	assert.Equal(t, []string{"acquire", "teardown"}, rec.calls)
}

func TestSeqYieldsOnceAndWarns(t *testing.T) {
	ctx := context.Background()
	p := newFakePool()

	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(old)

	s := scope.Acquire(p)
	var seen int
	for conn, err := range s.Seq(ctx) {
		seen++
		require.NoError(t, err)
		require.NotNil(t, conn)
	}
	assert.Equal(t, 1, seen, "the sequence must yield exactly once")
	assert.Contains(t, buf.String(), "deprecated",
		"ranging over a scope must emit a deprecation warning")

	require.NoError(t, s.Exit(ctx, false))
	assert.Equal(t, []string{"pool.acquire", "pool.release"}, p.rec.calls,
		"the sequence entry must share the regular exit path")
}
