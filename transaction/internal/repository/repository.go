// Package repository persists accepted transactions. The insert and the
// downstream publish of a single request run inside one transaction via
// Store.InTx.
package repository

import (
	"context"
	"errors"

	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/models"
)

// ErrNotFound signals that no transaction exists for the requested id.
var ErrNotFound = errors.New("transaction not found")

// Tx exposes the per-request operations available inside a transaction.
type Tx interface {
	// SaveTransaction persists one accepted transaction.
	SaveTransaction(ctx context.Context, txn *models.Transaction) error
}

// Store is the durable store of the transaction service.
type Store interface {
	// InTx runs fn inside a single transaction. Any error from fn rolls
	// everything back; nothing is partially committed.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// GetTransaction loads one transaction by id. Returns ErrNotFound
	// when it does not exist.
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)

	// Close releases the underlying connections.
	Close() error
}
