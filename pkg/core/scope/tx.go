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

// TxScope scopes a transaction on an already acquired connection.
// On exit, the transaction is resolved based on the failure signal:
// a failed guarded block is rolled back unconditionally, even if the
// transaction no longer reports itself active, since a failed block
// must never be committed. On the success path, the transaction is
// committed if it is still active; if the guarded block resolved it
// explicitly, the exit performs no further commit or rollback call.
type TxScope struct {
	Scoped[repo.Tx]
}

// Begin creates a scope which begins a transaction on conn when its
// acquisition is triggered.
func Begin(conn repo.Conn) *TxScope {
	ts := &TxScope{}
	ts.init(conn.BeginTx, resolveTx)
	return ts
}

func resolveTx(ctx context.Context, failed bool, tx repo.Tx) error {
	switch {
	case failed:
		if err := tx.Rollback(ctx); err != nil {
			return cerr.Teardown("rollback", err)
		}
	case tx.IsActive():
		if err := tx.Commit(ctx); err != nil {
			return cerr.Teardown("commit", err)
		}
	}
	return nil
}
