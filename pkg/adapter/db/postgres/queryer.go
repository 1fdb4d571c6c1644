package postgres

import "github.com/momeni/dbscope/pkg/core/repo"

type Queryer interface {
	*Conn | *Cursor | *Tx
	repo.Queryer
}
