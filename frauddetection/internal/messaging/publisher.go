package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fraudwatch-systems/fraudwatch-stack/common/messaging"
	fwnats "github.com/fraudwatch-systems/fraudwatch-stack/common/messaging/nats"
	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/events"
)

// FraudEventPublisher publishes fraud.detected events keyed by
// transaction id. Publishing blocks until the stream acknowledges or the
// timeout elapses; either failure mode is a hard error that aborts the
// caller's transaction.
type FraudEventPublisher struct {
	js      *fwnats.JetStreamClient
	subject string
	timeout time.Duration
}

// NewFraudEventPublisher builds the publisher.
func NewFraudEventPublisher(js *fwnats.JetStreamClient, timeout time.Duration) *FraudEventPublisher {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &FraudEventPublisher{
		js:      js,
		subject: messaging.SubjectFraudDetected,
		timeout: timeout,
	}
}

// Publish implements service.Publisher.
func (p *FraudEventPublisher) Publish(ctx context.Context, event *events.FraudDetectedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal fraud event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.js.PublishSync(ctx, p.subject, data, map[string]string{
		messaging.HeaderMsgKey: event.TransactionID,
	})
}
