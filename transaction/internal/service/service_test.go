package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/events"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/metrics"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/models"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/repository"
)

// fakeStore is an in-memory Store with real transaction semantics: staged
// writes only become visible when the InTx callback returns nil.
type fakeStore struct {
	transactions map[string]*models.Transaction
}

func newFakeStore() *fakeStore {
	return &fakeStore{transactions: make(map[string]*models.Transaction)}
}

func (s *fakeStore) InTx(_ context.Context, fn func(tx repository.Tx) error) error {
	staged := &fakeTx{}
	if err := fn(staged); err != nil {
		return err
	}
	for _, txn := range staged.saved {
		s.transactions[txn.ID] = txn
	}
	return nil
}

func (s *fakeStore) GetTransaction(_ context.Context, id string) (*models.Transaction, error) {
	txn, ok := s.transactions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return txn, nil
}

func (s *fakeStore) Close() error { return nil }

type fakeTx struct {
	saved []*models.Transaction
}

func (t *fakeTx) SaveTransaction(_ context.Context, txn *models.Transaction) error {
	t.saved = append(t.saved, txn)
	return nil
}

type fakePublisher struct {
	publishFunc func(ctx context.Context, event *events.TransactionCreatedEvent) error
	published   []*events.TransactionCreatedEvent
}

func (p *fakePublisher) Publish(ctx context.Context, event *events.TransactionCreatedEvent) error {
	if p.publishFunc != nil {
		if err := p.publishFunc(ctx, event); err != nil {
			return err
		}
	}
	p.published = append(p.published, event)
	return nil
}

func createRequest() *CreateRequest {
	return &CreateRequest{
		UserID:        "user-1",
		Amount:        decimal.RequireFromString("250.00"),
		Currency:      "USD",
		MerchantID:    "merchant-1",
		Country:       "US",
		PaymentMethod: models.PaymentMethodCard,
	}
}

func newTestService(store *fakeStore, publisher *fakePublisher) (*Service, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(store, publisher, m, nil)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	}
	return svc, m
}

func TestCreate_PersistsAndPublishes(t *testing.T) {
	store := newFakeStore()
	publisher := &fakePublisher{}
	svc, m := newTestService(store, publisher)

	txn, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	require.NotEmpty(t, txn.ID)
	assert.Equal(t, "user-1", txn.UserID)
	assert.Equal(t, time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC), txn.CreatedAt)

	saved, err := store.GetTransaction(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, saved.ID)

	require.Len(t, publisher.published, 1)
	event := publisher.published[0]
	assert.NotEmpty(t, event.EventID)
	assert.NotEqual(t, txn.ID, event.EventID, "event id is minted, not the transaction id")
	assert.Equal(t, txn.ID, event.TransactionID)
	assert.Equal(t, txn.CreatedAt, event.OccurredAt)
	assert.True(t, event.Amount.Equal(decimal.RequireFromString("250.00")))
	assert.Equal(t, "CARD", event.PaymentMethod)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.TransactionsAccepted))
}

func TestCreate_PublishFailureRollsBackInsert(t *testing.T) {
	store := newFakeStore()
	publisher := &fakePublisher{
		publishFunc: func(context.Context, *events.TransactionCreatedEvent) error {
			return errors.New("stream unavailable")
		},
	}
	svc, m := newTestService(store, publisher)

	_, err := svc.Create(context.Background(), createRequest())
	require.Error(t, err)

	assert.Empty(t, store.transactions, "insert must roll back with the publish")
	assert.Equal(t, float64(0), testutil.ToFloat64(m.TransactionsAccepted))
}

func TestCreate_DistinctIDsPerRequest(t *testing.T) {
	store := newFakeStore()
	publisher := &fakePublisher{}
	svc, _ := newTestService(store, publisher)

	a, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)
	b, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, publisher.published[0].EventID, publisher.published[1].EventID)
}

func TestGet_NotFound(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, &fakePublisher{})

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
