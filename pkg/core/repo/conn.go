package repo

import "context"

// Conn represents a single database connection, checked out of a Pool.
// It is unsafe to be used concurrently. Beyond direct statement
// execution (see Queryer), a connection can open a cursor for
// incremental statement execution and begin a transaction.
type Conn interface {
	Queryer

	// OpenCursor creates a new cursor bound to this connection.
	// The cursor must be closed before the connection is released
	// back to its pool, since the pool may hand the connection to
	// another user while the cursor still holds live state on it.
	OpenCursor(ctx context.Context) (Cursor, error)

	// BeginTx starts a new transaction on this connection.
	BeginTx(ctx context.Context) (Tx, error)

	// IsConn method prevents a non-Conn object (such as a Tx) to
	// mistakenly implement the Conn interface.
	IsConn()
}
