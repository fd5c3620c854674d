// Package models defines the alert service domain types.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/events"
)

// ReasonSeparator joins rule reason codes into the stored form.
const ReasonSeparator = ","

// Alert is a persisted fraud alert. Reasons are stored as a single
// comma-joined string.
type Alert struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transactionId"`
	UserID        string    `json:"userId"`
	RiskScore     int       `json:"riskScore"`
	Reasons       string    `json:"reasons"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewAlertFromEvent mints an alert from an inbound fraud event. The
// alert gets its own identifier, distinct from the event id used for
// deduplication.
func NewAlertFromEvent(event *events.FraudDetectedEvent, createdAt time.Time) *Alert {
	return &Alert{
		ID:            uuid.NewString(),
		TransactionID: event.TransactionID,
		UserID:        event.UserID,
		RiskScore:     event.RiskScore,
		Reasons:       JoinReasons(event.Reasons),
		CreatedAt:     createdAt,
	}
}

// JoinReasons collapses reason codes into the stored comma-joined form.
func JoinReasons(reasons []string) string {
	return strings.Join(reasons, ReasonSeparator)
}

// SplitReasons recovers individual reason codes from the stored form.
// Empty input yields an empty slice.
func SplitReasons(reasons string) []string {
	if reasons == "" {
		return []string{}
	}
	parts := strings.Split(reasons, ReasonSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
