// Package messaging connects the alert service to the bus: the live
// consumer and the dead-letter reprocessor.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/events"
	"github.com/fraudwatch-systems/fraudwatch-stack/common/logging"
	"github.com/fraudwatch-systems/fraudwatch-stack/common/messaging"
)

// Processor handles one decoded fraud event.
type Processor interface {
	Process(ctx context.Context, event *events.FraudDetectedEvent) error
}

// Consumer handles live traffic on fraud.detected. Decode or processing
// errors propagate to the bus layer, which retries with backoff and
// eventually parks the message on the dead-letter subject.
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
	var event events.FraudDetectedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return fmt.Errorf("decode fraud event: %w", err)
	}
	return c.processor.Process(ctx, &event)
}
