package notification

import (
	"context"

	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/models"
	"github.com/fraudwatch-systems/fraudwatch-stack/common/logging"
)

// LogChannel writes alert notifications to the structured log. It is the
// always-available audit channel and never fails.
type LogChannel struct {
	log *logging.Logger
}

// NewLogChannel creates a log-based notification channel.
func NewLogChannel(log *logging.Logger) *LogChannel {
	if log == nil {
		log = logging.Default()
	}
	return &LogChannel{log: log}
}

func (l *LogChannel) Type() string {
	return "log"
}

func (l *LogChannel) Send(_ context.Context, alert *models.Alert) error {
	l.log.Warn("FRAUD ALERT",
		logging.AlertID(alert.ID),
		logging.TransactionID(alert.TransactionID),
		logging.UserID(alert.UserID),
		"risk_score", alert.RiskScore,
		"severity", Severity(alert.RiskScore),
		"reasons", alert.Reasons,
	)
	return nil
}
