package repository

import "context"

// TxManager runs a function inside a database transaction. The context
// passed to fn carries the transaction; repositories executed with that
// context join it. The availability check, cart mutation and revision
// bump of a cart operation must share one transaction, as must the
// validate/pay/status-update unit of a payment.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
