// Copyright (c) 2024-2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cerr contains the common error types which are returned by
// the scope package and may be matched by callers using errors.As in
// order to distinguish the failing phase of a scoped acquisition.
package cerr

import "fmt"

// AcquisitionError indicates that the acquisition step of a scope
// failed, hence, no resource was checked out and nothing has to be
// released. An exit of the corresponding scope is a no-op.
type AcquisitionError struct {
	Err error
}

// Acquisition wraps err as an *AcquisitionError.
func Acquisition(err error) *AcquisitionError {
	return &AcquisitionError{Err: err}
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquisition: %s", e.Err.Error())
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// TeardownError indicates that a release, close, commit, or rollback
// step of a scope exit failed. It is reported after the scope state
// is cleared, so the owning scope never remains half-released when
// this error is observed.
type TeardownError struct {
	// Stage names the failing teardown stage, such as "release",
	// "cursor close", "commit", or "rollback".
	Stage string
	Err   error
}

// Teardown wraps err as a *TeardownError of the given stage.
func Teardown(stage string, err error) *TeardownError {
	return &TeardownError{Stage: stage, Err: err}
}

func (e *TeardownError) Error() string {
	return fmt.Sprintf("%s teardown: %s", e.Stage, e.Err.Error())
}

func (e *TeardownError) Unwrap() error {
	return e.Err
}

// UsageError indicates a programming error in the usage of a scope,
// such as triggering the acquisition of a single scope instance for
// a second time. It is never tolerated silently since re-driving an
// already consumed acquisition task could check out a second resource
// which the scope is unable to track and release.
type UsageError struct {
	Op string
}

// Usage creates a *UsageError for the op operation.
func Usage(op string) *UsageError {
	return &UsageError{Op: op}
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("invalid scope usage: %s", e.Op)
}
