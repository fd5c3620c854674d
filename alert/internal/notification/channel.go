// Package notification delivers fraud alerts over configured channels.
package notification

import (
	"context"

	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/models"
)

// Channel defines the interface for alert notification delivery.
type Channel interface {
	Send(ctx context.Context, alert *models.Alert) error
	Type() string
}

// Severity buckets derived from the alert risk score.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Severity maps a risk score onto a severity bucket.
func Severity(riskScore int) string {
	switch {
	case riskScore >= 80:
		return SeverityCritical
	case riskScore >= 60:
		return SeverityHigh
	case riskScore >= 40:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
