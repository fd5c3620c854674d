// Package events defines the wire format of events the transaction
// service publishes.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCreatedEvent announces an accepted transaction to the
// pipeline. EventID is the idempotency key downstream consumers dedup on.
type TransactionCreatedEvent struct {
	EventID       string          `json:"eventId"`
	OccurredAt    time.Time       `json:"occurredAt"`
	TransactionID string          `json:"transactionId"`
	UserID        string          `json:"userId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	MerchantID    string          `json:"merchantId"`
	Country       string          `json:"country"`
	PaymentMethod string          `json:"paymentMethod"`
}
