// Package events defines the wire format of events the alert service
// consumes.
package events

import "time"

// FraudDetectedEvent is published by the fraud detection service whenever
// a transaction trips at least one rule.
type FraudDetectedEvent struct {
	EventID       string    `json:"eventId"`
	OccurredAt    time.Time `json:"occurredAt"`
	TransactionID string    `json:"transactionId"`
	UserID        string    `json:"userId"`
	RiskScore     int       `json:"riskScore"`
	Reasons       []string  `json:"reasons"`
	RuleVersion   string    `json:"ruleVersion"`
}
