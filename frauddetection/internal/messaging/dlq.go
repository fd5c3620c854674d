package messaging

import (
	"context"
	"encoding/json"

	"github.com/fraudwatch-systems/fraudwatch-stack/common/logging"
	"github.com/fraudwatch-systems/fraudwatch-stack/common/messaging"
	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/events"
	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/metrics"
)

// DLQConsumer drains parked transaction events back through the live
// processor. It never returns an error to the bus layer: a message that
// fails reprocessing is counted, logged, and dropped rather than
// re-parked, so the dead-letter consumer cannot enter its own failure
// loop.
type DLQConsumer struct {
	processor Processor
	metrics   *metrics.DLQMetrics
	log       *logging.Logger
}

// NewDLQConsumer builds the dead-letter reprocessor.
func NewDLQConsumer(processor Processor, m *metrics.DLQMetrics, log *logging.Logger) *DLQConsumer {
	if log == nil {
		log = logging.Default()
	}
	return &DLQConsumer{processor: processor, metrics: m, log: log}
}

// Handle implements messaging.Handler.
func (c *DLQConsumer) Handle(ctx context.Context, msg *messaging.Message) error {
	c.metrics.Received.Inc()

	var event events.TransactionCreatedEvent
	if len(msg.Data) == 0 {
		c.metrics.Failed.Inc()
		c.log.Error("received empty message from transactions-created DLQ")
		return nil
	}
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		c.metrics.Failed.Inc()
		c.log.Error("received unparseable message from transactions-created DLQ",
			logging.Err(err))
		return nil
	}

	if err := c.processor.Process(ctx, &event); err != nil {
		c.metrics.Failed.Inc()
		c.log.Error("failed to reprocess DLQ event",
			logging.EventID(event.EventID),
			logging.TransactionID(event.TransactionID),
			logging.Err(err))
		return nil
	}

	c.metrics.Reprocessed.Inc()
	c.log.Info("reprocessed DLQ event",
		logging.EventID(event.EventID),
		logging.TransactionID(event.TransactionID))
	return nil
}
