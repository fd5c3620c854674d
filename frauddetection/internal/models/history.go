// Package models holds the persisted records of the fraud detection
// service.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryRecord is one row of the append-only per-user transaction
// journal. Written once per processed transaction event; only the
// retention sweeper ever deletes it.
type HistoryRecord struct {
	TransactionID string
	UserID        string
	Amount        decimal.Decimal
	Currency      string
	MerchantID    string
	Country       string
	OccurredAt    time.Time
}
