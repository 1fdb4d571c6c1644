// Copyright (c) 2024-2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/momeni/dbscope/pkg/core/repo"
)

// Tx represents a database transaction.
// It is unsafe to be used concurrently. A transaction may be used
// in order to execute one or more SQL statements one at a time.
// For statement execution methods, see the repo.Queryer interface.
// The database/sql package does not expose the transaction state,
// hence, Tx maintains an explicit activity flag which is turned off
// by the first Commit or Rollback call.
type Tx struct {
	tx     *sql.Tx
	active bool
}

func (t *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *Tx) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	rows, err := t.tx.QueryContext(ctx, sql, args...)
	return rowsAdapter{rows}, err
}

// Commit makes all changes of this transaction permanent and marks
// it as resolved, even if the commit itself fails.
func (t *Tx) Commit(_ context.Context) error {
	t.active = false
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards all changes of this transaction and marks it as
// resolved, even if the rollback itself fails.
func (t *Tx) Rollback(_ context.Context) error {
	t.active = false
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// IsActive reports whether this transaction is still unresolved.
func (t *Tx) IsActive() bool {
	return t.active
}

// IsTx method prevents a non-Tx object (such as a Conn) to
// mistakenly implement the repo.Tx interface.
func (t *Tx) IsTx() {
}
