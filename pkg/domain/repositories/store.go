package repositories

import "context"

// Tx exposes the repositories scoped to a single transaction. Reads observe
// the transaction's own staged writes.
type Tx interface {
	Items() ItemRepository
	Orders() OrderRepository
	Tasks() TaskRepository
}

// Store is the transactional persistence boundary. WithinTx runs fn inside
// one transaction: if fn returns an error the transaction rolls back and no
// staged write survives; otherwise every staged write commits atomically.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
