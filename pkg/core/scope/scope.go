// Copyright (c) 2024-2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scope implements a scoped acquisition protocol for pooled
// database resources. A scope represents one acquire/use/release
// cycle: it wraps a pending acquisition task (a blocking, context
// observing function which checks a resource out of its collaborator,
// such as a connection out of a pool) and guarantees that a resource
// which was checked out successfully is released exactly once, on
// every exit path, in the innermost-first order for nested scopes.
//
// Two acquisition styles are supported and share a single state
// machine. The eager style obtains the resource up front:
//
//	s := scope.Acquire(pool)
//	conn, err := s.Get(ctx)
//	if err != nil {
//		return err
//	}
//	defer s.Exit(ctx, false)
//
// The scoped style enters and exits explicitly, usually through the
// With helper which also maps a handler panic or error to the exit
// failure signal:
//
//	err := scope.Cursor(pool).With(ctx,
//		func(ctx context.Context, cur repo.Cursor) error {
//			_, err := cur.Exec(ctx, "SELECT 1")
//			return err
//		})
//
// A scope instance belongs to a single goroutine. Sharing one
// instance between goroutines is not supported; concurrent users of
// the same pool should create one scope instance each.
//
// Context cancellation while the acquisition blocks surfaces as an
// acquisition failure and leaves nothing to release. Cancellation
// after a resource became active does not release it automatically;
// calling Exit remains the caller's obligation on that path, which
// the With helper discharges for its callers.
package scope

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/momeni/dbscope/pkg/core/cerr"
	"github.com/momeni/dbscope/pkg/core/log"
)

// AcquireFunc is a pending acquisition task. It blocks, observing the
// ctx, until the resource is checked out (e.g., waiting for a free
// pool slot or a network round trip) and returns it.
type AcquireFunc[R any] func(ctx context.Context) (R, error)

// TeardownFunc releases an acquired resource. The failed flag
// indicates whether the guarded block between entry and exit failed,
// which is relevant for teardowns with a success/failure distinction
// such as the commit-or-rollback resolution of a transaction scope.
type TeardownFunc[R any] func(ctx context.Context, failed bool, r R) error

// handleState tracks the lifecycle of the resource handle owned by a
// scope. It moves from pending to active exactly once, on successful
// acquisition, and from active to released exactly once, on exit.
// No resource is exposed to the caller while pending.
type handleState uint8

const (
	statePending handleState = iota
	stateActive
	stateReleased
)

// Scoped wraps a pending acquisition task of an R resource together
// with the teardown which must run on scope exit. It is the generic
// core which the PoolScope, LifetimeScope, CursorScope, and TxScope
// specializations configure with their resource-specific acquisition
// and teardown logic.
type Scoped[R any] struct {
	acquire  AcquireFunc[R]
	teardown TeardownFunc[R]
	res      R
	state    handleState
	consumed bool
}

// New creates a scope around a custom acquisition task and teardown.
// The specialized constructors of this package should be preferred
// for the pool, cursor, and transaction resources; New is exported
// for callers which need to scope some other resource with the same
// exactly-once release guarantees.
func New[R any](acquire AcquireFunc[R], teardown TeardownFunc[R]) *Scoped[R] {
	s := &Scoped[R]{}
	s.init(acquire, teardown)
	return s
}

func (s *Scoped[R]) init(acquire AcquireFunc[R], teardown TeardownFunc[R]) {
	s.acquire = acquire
	s.teardown = teardown
}

// consume drives the pending acquisition task exactly once. Both
// entry styles funnel into this method, guarded by a one-shot flag,
// so it is impossible to check out a second resource through an
// already consumed scope.
func (s *Scoped[R]) consume(ctx context.Context, op string) (R, error) {
	var zero R
	if s.consumed {
		return zero, cerr.Usage(op + " on an already consumed scope")
	}
	s.consumed = true
	r, err := s.acquire(ctx)
	if err != nil {
		// No handle is created; a following Exit is a no-op.
		var aerr *cerr.AcquisitionError
		if errors.As(err, &aerr) {
			return zero, err
		}
		return zero, cerr.Acquisition(err)
	}
	s.res = r
	s.state = stateActive
	return r, nil
}

// Get triggers the acquisition eagerly and returns the resource.
// The caller remains responsible for calling Exit afterwards.
// At most one of Get and Enter may be called on a scope instance;
// a second trigger reports a *cerr.UsageError without driving the
// acquisition task again.
func (s *Scoped[R]) Get(ctx context.Context) (R, error) {
	return s.consume(ctx, "Get")
}

// Enter enters the scope, triggering the acquisition as its first
// action, and returns the resource. It is equivalent to Get apart
// from the calling convention; it exists so an entry which is paired
// with a deferred Exit reads as a scope and not as a plain getter.
func (s *Scoped[R]) Enter(ctx context.Context) (R, error) {
	return s.consume(ctx, "Enter")
}

// Exit leaves the scope, tearing the acquired resource down. The
// failed flag reports whether the guarded block failed, affecting
// teardowns such as the commit-or-rollback transaction resolution.
//
// Exit is idempotent. If no resource is currently held, because the
// acquisition failed, was never triggered, or a previous Exit already
// ran, it performs no collaborator calls and returns nil. The handle
// is cleared before the teardown runs, so even a failing teardown,
// reported as a *cerr.TeardownError, leaves the scope released and a
// repeated Exit call remains a no-op.
func (s *Scoped[R]) Exit(ctx context.Context, failed bool) error {
	if s.state != stateActive {
		return nil
	}
	r := s.res
	var zero R
	s.res = zero
	s.state = stateReleased
	if s.teardown == nil {
		return nil
	}
	return s.teardown(ctx, failed, r)
}

// Active reports whether this scope currently holds an acquired,
// not yet released resource.
func (s *Scoped[R]) Active() bool {
	return s.state == stateActive
}

// With enters the scope, invokes f with the acquired resource, and
// exits with a failure signal derived from the outcome of f: a
// non-nil error or a panic marks the scope exit as failed. A panic
// is recovered and converted into the returned error after the
// teardown completed. When f fails and the teardown succeeds, the
// error of f is returned unchanged; when both fail, both errors are
// chained and reported together.
func (s *Scoped[R]) With(
	ctx context.Context,
	f func(ctx context.Context, r R) error,
) (err error) {
	r, err := s.Enter(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			err = errors.Join(
				fmt.Errorf("panicked: %v", p), s.Exit(ctx, true),
			)
			return
		}
		if err != nil {
			if err2 := s.Exit(ctx, true); err2 != nil {
				err = errors.Join(err, err2)
			}
			return
		}
		err = s.Exit(ctx, false)
	}()
	err = f(ctx, r)
	return err
}

// Seq adapts this scope into a single-element sequence which yields
// the acquired resource (or the acquisition error) once. It exists
// for backward compatibility with range-based acquisition loops and
// logs a deprecation warning when used. The caller still owns the
// Exit call, exactly as with Enter.
//
// Deprecated: use Enter or With instead.
func (s *Scoped[R]) Seq(ctx context.Context) iter.Seq2[R, error] {
	log.Warn(ctx,
		"ranging over a scope is deprecated, use Enter or With",
	)
	return func(yield func(R, error) bool) {
		yield(s.Enter(ctx))
	}
}
