// Package repository persists alerts and processed-event markers behind
// narrow interfaces. All mutating work of a single event runs inside one
// transaction via Store.InTx.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/models"
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

	// SaveAlert persists one alert.
	SaveAlert(ctx context.Context, alert *models.Alert) error
}

// Store is the durable store of the alert service.
type Store interface {
	// InTx runs fn inside a single transaction. Any error from fn rolls
	// everything back; nothing is partially committed.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// ListAlerts returns alerts newest first, capped at limit. A limit of
	// zero or less applies the default page size.
	ListAlerts(ctx context.Context, limit int) ([]*models.Alert, error)

	// ListAlertsByUser returns a user's alerts newest first, capped at
	// limit.
	ListAlertsByUser(ctx context.Context, userID string, limit int) ([]*models.Alert, error)

	// PurgeMarkersBefore deletes markers processed before cutoff and
	// returns how many were removed. Alerts themselves are never purged.
	PurgeMarkersBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases the underlying connections.
	Close() error
}
