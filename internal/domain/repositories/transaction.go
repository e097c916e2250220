package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs a function inside one database transaction. The
// function must use the ctx it receives so repositories pick the transaction up.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
