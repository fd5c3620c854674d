// Package messaging connects the fraud detection service to the bus:
// the live consumer, the dead-letter reprocessor, and the fraud event
// publisher.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fraudwatch-systems/fraudwatch-stack/common/logging"
	"github.com/fraudwatch-systems/fraudwatch-stack/common/messaging"
	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/events"
)

// Processor handles one decoded transaction event.
type Processor interface {
	Process(ctx context.Context, event *events.TransactionCreatedEvent) error
}

// Consumer handles live traffic on transactions.created. Decode or
// processing errors propagate to the bus layer, which retries with
// backoff and eventually parks the message on the dead-letter subject.
type Consumer struct {
	processor Processor
	log       *logging.Logger
}

// NewConsumer builds the live consumer.
func NewConsumer(processor Processor, log *logging.Logger) *Consumer {
	if log == nil {
		log = logging.Default()
	}
	return &Consumer{processor: processor, log: log}
}

// Handle implements messaging.Handler.
func (c *Consumer) Handle(ctx context.Context, msg *messaging.Message) error {
	var event events.TransactionCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return fmt.Errorf("decode transaction event: %w", err)
	}
	return c.processor.Process(ctx, &event)
}
