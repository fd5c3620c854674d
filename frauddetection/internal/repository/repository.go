// Package repository persists transaction history and processed-event
// markers behind narrow interfaces. All mutating work of a single event
// runs inside one transaction via Store.InTx.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/models"
)

// ErrDuplicateEvent signals that a processed-event marker already exists
// for the event id. Services treat it as a benign no-op: a concurrent
// attempt for the same event won the race.
var ErrDuplicateEvent = errors.New("event already processed")

// Tx exposes the per-event operations available inside a transaction.
type Tx interface {
	// EventProcessed reports whether a marker exists for the event id.
	EventProcessed(ctx context.Context, eventID string) (bool, error)

	// SaveMarker records that the event's side effects have been applied.
	// Returns ErrDuplicateEvent when a marker already exists.
	SaveMarker(ctx context.Context, eventID string, processedAt time.Time) error

	// CountRecentTransactions counts the user's history records with
	// occurredAt strictly after since.
	CountRecentTransactions(ctx context.Context, userID string, since time.Time) (int64, error)

	// LatestTransaction returns the user's most recent history record,
	// or nil when the user has none.
	LatestTransaction(ctx context.Context, userID string) (*models.HistoryRecord, error)

	// SaveHistory appends one history record.
	SaveHistory(ctx context.Context, record *models.HistoryRecord) error
}

// Store is the durable store of the fraud detection service.
type Store interface {
	// InTx runs fn inside a single transaction. Any error from fn rolls
	// everything back; nothing is partially committed.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// PurgeMarkersBefore deletes markers processed before cutoff and
	// returns how many were removed.
	PurgeMarkersBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// PurgeHistoryBefore deletes history records that occurred before
	// cutoff and returns how many were removed.
	PurgeHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases the underlying connections.
	Close() error
}
