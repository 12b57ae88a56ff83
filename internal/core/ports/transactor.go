package ports

import "context"

// Transactor runs fn inside a storage transaction. Repository calls made with
// the ctx passed to fn join the transaction; any error from fn rolls back
// every write made through it.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
