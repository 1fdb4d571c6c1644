package repo

import "context"

// Cursor represents a statement handle bound to a single connection.
// Statements executed through the cursor (see Queryer) keep their
// pending result set open on the owning connection until the next
// execution or until Close is called.
// A cursor is unsafe to be used concurrently and must be closed
// before its owning connection is released.
type Cursor interface {
	Queryer
	Close(ctx context.Context) error
}
