// Package events defines the bus payloads the fraud detection service
// consumes and emits. Field names match the wire format produced by the
// transaction service.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCreatedEvent is the inbound payload on transactions.created.
// EventID is the idempotency key; OccurredAt and Amount may be absent.
type TransactionCreatedEvent struct {
	EventID       string           `json:"eventId"`
	OccurredAt    *time.Time       `json:"occurredAt,omitempty"`
	TransactionID string           `json:"transactionId"`
	UserID        string           `json:"userId"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Currency      string           `json:"currency"`
	MerchantID    string           `json:"merchantId"`
	Country       string           `json:"country"`
	PaymentMethod string           `json:"paymentMethod"`
}

// FraudDetectedEvent is the outbound payload on fraud.detected, emitted
// only for fraudulent evaluations. EventID is minted fresh; the alert
// service dedups on it.
type FraudDetectedEvent struct {
	EventID       string    `json:"eventId"`
	OccurredAt    time.Time `json:"occurredAt"`
	TransactionID string    `json:"transactionId"`
	UserID        string    `json:"userId"`
	RiskScore     int       `json:"riskScore"`
	Reasons       []string  `json:"reasons"`
	RuleVersion   string    `json:"ruleVersion"`
}
