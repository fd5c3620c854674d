// Package messaging connects the transaction service to the bus.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fraudwatch-systems/fraudwatch-stack/common/messaging"
	fwnats "github.com/fraudwatch-systems/fraudwatch-stack/common/messaging/nats"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/events"
)

// TransactionEventPublisher publishes transactions.created events keyed
// by transaction id. Publishing blocks until the stream acknowledges or
// the timeout elapses; either failure mode is a hard error that aborts
// the caller's transaction.
type TransactionEventPublisher struct {
	js      *fwnats.JetStreamClient
	subject string
	timeout time.Duration
}

// NewTransactionEventPublisher builds the publisher.
func NewTransactionEventPublisher(js *fwnats.JetStreamClient, timeout time.Duration) *TransactionEventPublisher {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &TransactionEventPublisher{
		js:      js,
		subject: messaging.SubjectTransactionsCreated,
		timeout: timeout,
	}
}

// Publish implements service.Publisher.
func (p *TransactionEventPublisher) Publish(ctx context.Context, event *events.TransactionCreatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal transaction event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.js.PublishSync(ctx, p.subject, data, map[string]string{
		messaging.HeaderMsgKey: event.TransactionID,
	})
}
