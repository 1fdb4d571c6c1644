package pgxds

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/momeni/dbscope/pkg/core/repo"
)

// Tx represents a database transaction over a pgx connection. It is
// unsafe to be used concurrently. The pgx transaction state is not
// exposed, hence, Tx maintains an explicit activity flag which is
// turned off by the first Commit or Rollback call.
type Tx struct {
	tx     pgx.Tx
	active bool
}

func (t *Tx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	ct, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (t *Tx) Query(ctx context.Context, sql string, args ...any) (repo.Rows, error) {
	return t.tx.Query(ctx, sql, args...)
}

// Commit makes all changes of this transaction permanent and marks
// it as resolved, even if the commit itself fails.
func (t *Tx) Commit(ctx context.Context) error {
	t.active = false
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards all changes of this transaction and marks it as
// resolved, even if the rollback itself fails.
func (t *Tx) Rollback(ctx context.Context) error {
	t.active = false
	if err := t.tx.Rollback(ctx); err != nil {
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
