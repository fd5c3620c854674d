package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudwatch-systems/fraudwatch-stack/common/messaging"
	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/events"
	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/metrics"
)

type mockProcessor struct {
	processFunc func(ctx context.Context, event *events.TransactionCreatedEvent) error
	calls       int
}

func (m *mockProcessor) Process(ctx context.Context, event *events.TransactionCreatedEvent) error {
	m.calls++
	if m.processFunc != nil {
		return m.processFunc(ctx, event)
	}
	return nil
}

func dlqFixture(t *testing.T, processor *mockProcessor) (*DLQConsumer, *metrics.DLQMetrics) {
	t.Helper()
	m := metrics.NewDLQMetrics(prometheus.NewRegistry())
	return NewDLQConsumer(processor, m, nil), m
}

func validMessage(t *testing.T) *messaging.Message {
	t.Helper()
	data, err := json.Marshal(&events.TransactionCreatedEvent{
		EventID:       "evt-1",
		TransactionID: "txn-1",
		UserID:        "user-1",
		Currency:      "USD",
		MerchantID:    "merchant-ok",
		Country:       "US",
	})
	require.NoError(t, err)
	return &messaging.Message{Subject: "transactions.created.dlq", Data: data}
}

func TestDLQ_ReprocessesParkedEvent(t *testing.T) {
	processor := &mockProcessor{}
	consumer, m := dlqFixture(t, processor)

	err := consumer.Handle(context.Background(), validMessage(t))
	require.NoError(t, err)

	assert.Equal(t, 1, processor.calls)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Received))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Reprocessed))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Failed))
}

func TestDLQ_UnparseableMessageIsDropped(t *testing.T) {
	processor := &mockProcessor{}
	consumer, m := dlqFixture(t, processor)

	err := consumer.Handle(context.Background(), &messaging.Message{
		Subject: "transactions.created.dlq",
		Data:    []byte("{not json"),
	})
	require.NoError(t, err, "dead-letter consumer must not surface errors")

	assert.Equal(t, 0, processor.calls, "processor must not run for garbage")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Received))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Failed))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Reprocessed))
}

func TestDLQ_EmptyMessageIsDropped(t *testing.T) {
	processor := &mockProcessor{}
	consumer, m := dlqFixture(t, processor)

	err := consumer.Handle(context.Background(), &messaging.Message{
		Subject: "transactions.created.dlq",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, processor.calls)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Received))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Failed))
}

func TestDLQ_ProcessorErrorIsSwallowed(t *testing.T) {
	processor := &mockProcessor{
		processFunc: func(context.Context, *events.TransactionCreatedEvent) error {
			return errors.New("store down")
		},
	}
	consumer, m := dlqFixture(t, processor)

	err := consumer.Handle(context.Background(), validMessage(t))
	require.NoError(t, err, "reprocessing failure must not propagate")

	assert.Equal(t, 1, processor.calls)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Received))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Failed))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Reprocessed))
}

func TestConsumer_DecodeErrorPropagates(t *testing.T) {
	processor := &mockProcessor{}
	consumer := NewConsumer(processor, nil)

	err := consumer.Handle(context.Background(), &messaging.Message{Data: []byte("nope")})
	require.Error(t, err, "live consumer errors feed the bus retry loop")
	assert.Equal(t, 0, processor.calls)
}

func TestConsumer_DelegatesToProcessor(t *testing.T) {
	processor := &mockProcessor{}
	consumer := NewConsumer(processor, nil)

	require.NoError(t, consumer.Handle(context.Background(), validMessage(t)))
	assert.Equal(t, 1, processor.calls)
}
