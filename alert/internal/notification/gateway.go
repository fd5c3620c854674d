package notification

import (
	"context"

	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/metrics"
	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/models"
	"github.com/fraudwatch-systems/fraudwatch-stack/common/logging"
)

// Gateway fans a fraud alert out to every configured channel. A failing
// channel is logged and counted but never blocks the remaining channels,
// and delivery problems never surface to the caller: the alert is already
// committed by the time the gateway runs.
type Gateway struct {
	channels []Channel
	metrics  *metrics.Metrics
	log      *logging.Logger
}

// NewGateway builds the fan-out gateway. With no channels configured it
// falls back to the log channel so every alert leaves a trace somewhere.
func NewGateway(channels []Channel, m *metrics.Metrics, log *logging.Logger) *Gateway {
	if log == nil {
		log = logging.Default()
	}
	if len(channels) == 0 {
		channels = []Channel{NewLogChannel(log)}
	}
	return &Gateway{channels: channels, metrics: m, log: log}
}

// NotifyFraud delivers the alert on every channel.
func (g *Gateway) NotifyFraud(ctx context.Context, alert *models.Alert) {
	for _, ch := range g.channels {
		err := ch.Send(ctx, alert)
		g.metrics.RecordNotification(ch.Type(), err)
		if err != nil {
			g.log.Error("notification channel failed",
				logging.Channel(ch.Type()),
				logging.AlertID(alert.ID),
				logging.Err(err))
		}
	}
}
