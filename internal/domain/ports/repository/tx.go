package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Repositories accept it on every method;
// nil means "run against the pool". The postgres layer asserts the concrete
// type, the in-memory mocks ignore it.
type Tx interface{}

// TransactionManager runs fn inside a single database transaction, passing
// the handle that every repository call inside fn must forward.
type TransactionManager interface {
	WithTx(ctx context.Context, txOptions pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
