package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/fraudwatch-systems/fraudwatch-stack/common/logging"
	"github.com/fraudwatch-systems/fraudwatch-stack/common/messaging"
)

// JetStreamClient extends Client with JetStream persistence capabilities.
type JetStreamClient struct {
	*Client
	js jetstream.JetStream
}

// StreamConfig defines a JetStream stream configuration.
type StreamConfig struct {
	// Name is the stream name.
	Name string

	// Subjects are the subjects this stream captures. Dead-letter
	// subjects live under the same wildcard as their source subject.
	Subjects []string

	// MaxAge is the maximum age of messages in the stream.
	MaxAge time.Duration

	// MaxMsgs is the maximum number of messages in the stream.
	MaxMsgs int64

	// Retention policy.
	Retention jetstream.RetentionPolicy

	// Storage type.
	Storage jetstream.StorageType
}

// ConsumeConfig defines a durable pull consumer with retry-then-park
// behavior.
type ConsumeConfig struct {
	// Stream is the stream the consumer reads from.
	Stream string

	// Durable is the durable consumer name.
	Durable string

	// Subject filters which messages this consumer receives.
	Subject string

	// MaxDeliver is the total number of delivery attempts (first
	// delivery plus retries) before a message is parked.
	MaxDeliver int

	// Backoff is the redelivery delay applied after a failed attempt.
	Backoff time.Duration

	// AckWait is the time to wait for acknowledgment before redelivery.
	AckWait time.Duration

	// ParkFailures controls dead-lettering. When true, a message whose
	// delivery attempts are exhausted is republished to the subject's
	// dead-letter subject and acked. When false (used by dead-letter
	// consumers themselves), exhausted messages are acked and dropped so
	// the consumer never enters its own failure loop.
	ParkFailures bool
}

// Predefined pipeline streams.
var (
	// TransactionsStream captures transaction events and their dead letters.
	TransactionsStream = StreamConfig{
		Name:      "TRANSACTIONS",
		Subjects:  []string{"transactions.>"},
		MaxAge:    24 * time.Hour,
		MaxMsgs:   1_000_000,
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	}

	// FraudStream captures fraud events and their dead letters.
	FraudStream = StreamConfig{
		Name:      "FRAUD",
		Subjects:  []string{"fraud.>"},
		MaxAge:    24 * time.Hour,
		MaxMsgs:   1_000_000,
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	}
)

// NewJetStreamClient creates a JetStream-enabled client.
func NewJetStreamClient(cfg Config, log *logging.Logger) (*JetStreamClient, error) {
	client, err := NewClient(cfg, log)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(client.conn)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &JetStreamClient{
		Client: client,
		js:     js,
	}, nil
}

// EnsureStream creates or updates a stream.
func (c *JetStreamClient) EnsureStream(ctx context.Context, cfg StreamConfig) error {
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.Name,
		Subjects:  cfg.Subjects,
		MaxAge:    cfg.MaxAge,
		MaxMsgs:   cfg.MaxMsgs,
		Retention: cfg.Retention,
		Storage:   cfg.Storage,
	})
	if err != nil {
		return fmt.Errorf("failed to create/update stream %s: %w", cfg.Name, err)
	}
	return nil
}

// PublishSync publishes a message and waits for the stream acknowledgment.
// The context bounds the wait; a timeout surfaces as a hard error so the
// caller's transaction aborts and the bus redelivers.
func (c *JetStreamClient) PublishSync(ctx context.Context, subject string, data []byte, headers map[string]string) error {
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
	}
	if len(headers) > 0 {
		msg.Header = make(nats.Header, len(headers))
		for k, v := range headers {
			msg.Header.Set(k, v)
		}
	}

	if _, err := c.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

// Consume starts a durable consumer that feeds messages to handler.
// Handler errors are NAK'd with the configured backoff until delivery
// attempts are exhausted, at which point the message is parked on the
// dead-letter subject (or dropped, per ParkFailures). Returns a stop
// function.
func (c *JetStreamClient) Consume(ctx context.Context, cfg ConsumeConfig, handler messaging.Handler) (func(), error) {
	stream, err := c.js.Stream(ctx, cfg.Stream)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream %s: %w", cfg.Stream, err)
	}

	ackWait := cfg.AckWait
	if ackWait == 0 {
		ackWait = 30 * time.Second
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          cfg.Durable,
		Durable:       cfg.Durable,
		FilterSubject: cfg.Subject,
		AckWait:       ackWait,
		MaxDeliver:    cfg.MaxDeliver,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create/update consumer %s: %w", cfg.Durable, err)
	}

	consumeCtx, cancel := context.WithCancel(ctx)

	cons, err := consumer.Consume(func(msg jetstream.Msg) {
		c.dispatch(consumeCtx, cfg, msg, handler)
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start consuming %s: %w", cfg.Subject, err)
	}

	return func() {
		cancel()
		cons.Stop()
	}, nil
}

func (c *JetStreamClient) dispatch(ctx context.Context, cfg ConsumeConfig, msg jetstream.Msg, handler messaging.Handler) {
	m := &messaging.Message{
		Subject:   msg.Subject(),
		Data:      msg.Data(),
		Timestamp: time.Now(),
	}
	if headers := msg.Headers(); headers != nil {
		m.Metadata = make(map[string]string)
		for k := range headers {
			m.Metadata[k] = headers.Get(k)
		}
	}

	err := handler(ctx, m)
	if err == nil {
		_ = msg.Ack()
		return
	}

	delivered := 1
	if meta, metaErr := msg.Metadata(); metaErr == nil {
		delivered = int(meta.NumDelivered)
	}

	if delivered < cfg.MaxDeliver {
		c.log.Warn("message processing failed, scheduling retry",
			"subject", msg.Subject(),
			"attempt", delivered,
			"max_deliver", cfg.MaxDeliver,
			"error", err.Error())
		_ = msg.NakWithDelay(cfg.Backoff)
		return
	}

	if !cfg.ParkFailures {
		// Dead-letter consumers drop exhausted messages instead of
		// re-parking them, which would loop forever.
		c.log.Error("dropping message after exhausted deliveries",
			"subject", msg.Subject(),
			"error", err.Error())
		_ = msg.Ack()
		return
	}

	dlq := messaging.DLQSubject(cfg.Subject)
	if pubErr := c.PublishSync(ctx, dlq, msg.Data(), m.Metadata); pubErr != nil {
		c.log.Error("failed to park message on dead-letter subject",
			"subject", msg.Subject(),
			"dlq_subject", dlq,
			"error", pubErr.Error())
		// Leave unacked; redelivery will try parking again.
		_ = msg.NakWithDelay(cfg.Backoff)
		return
	}

	c.log.Error("message parked on dead-letter subject",
		"subject", msg.Subject(),
		"dlq_subject", dlq,
		"attempts", delivered,
		"error", err.Error())
	_ = msg.Ack()
}
