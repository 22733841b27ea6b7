package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs one logical operation as a single atomic unit.
// Existence, ownership and uniqueness checks made inside fn are isolated
// together with the mutation they guard.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
