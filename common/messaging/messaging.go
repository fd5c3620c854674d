// Package messaging defines broker-agnostic types for the fraud pipeline.
// Services consume and publish through these abstractions so the NATS
// implementation stays behind one seam.
package messaging

import (
	"context"
	"time"
)

// Message represents a message received from or sent to the bus.
type Message struct {
	// Subject is the topic the message was published to.
	Subject string

	// Data is the raw message payload (JSON-encoded event).
	Data []byte

	// Metadata contains optional key-value pairs carried as headers.
	Metadata map[string]string

	// Timestamp is when the message was received.
	Timestamp time.Time
}

// Key returns the partitioning key the publisher attached to the message,
// or "" when none was set.
func (m *Message) Key() string {
	if m.Metadata == nil {
		return ""
	}
	return m.Metadata[HeaderMsgKey]
}

// HeaderMsgKey carries the business key (transaction id) a message is
// keyed by. Consumers in the same queue group rely on it only for log
// correlation; dedup is enforced by the durable processed-marker store.
const HeaderMsgKey = "Msg-Key"

// Handler processes a received message. Returning an error signals
// processing failure; the bus layer retries with backoff and eventually
// parks the message on the dead-letter subject.
type Handler func(ctx context.Context, msg *Message) error
