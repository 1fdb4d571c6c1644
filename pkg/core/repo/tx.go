// Copyright (c) 2024-2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// Tx represents a database transaction.
// It is unsafe to be used concurrently. A transaction may be used
// in order to execute one or more SQL statements one at a time.
// For statement execution methods, see the Queryer interface.
// A transaction reports itself active until it is resolved by a
// Commit or Rollback call; resolving it twice is an error of the
// underlying driver and is not masked by implementations.
type Tx interface {
	Queryer

	// Commit makes all changes of this transaction permanent.
	Commit(ctx context.Context) error

	// Rollback discards all changes of this transaction.
	Rollback(ctx context.Context) error

	// IsActive reports whether this transaction is still open,
	// that is, neither committed nor rolled back yet.
	IsActive() bool

	// IsTx method prevents a non-Tx object (such as a Conn) to
	// mistakenly implement the Tx interface.
	IsTx()
}
