// Package service accepts new transactions: it mints identifiers,
// persists the transaction, and publishes the pipeline event — persist
// and publish commit or roll back as one unit.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fraudwatch-systems/fraudwatch-stack/common/logging"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/events"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/metrics"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/models"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/repository"
)

// Publisher publishes transaction events downstream. A publish failure
// must surface as an error so the enclosing transaction aborts.
type Publisher interface {
	Publish(ctx context.Context, event *events.TransactionCreatedEvent) error
}

// CreateRequest carries the validated fields of a new transaction.
type CreateRequest struct {
	UserID        string
	Amount        decimal.Decimal
	Currency      string
	MerchantID    string
	Country       string
	PaymentMethod models.PaymentMethod
}

// Service is the transaction ingest processor.
type Service struct {
	store     repository.Store
	publisher Publisher
	metrics   *metrics.Metrics
	log       *logging.Logger
	now       func() time.Time
}

// NewService wires the ingest processor.
func NewService(
	store repository.Store,
	publisher Publisher,
	m *metrics.Metrics,
	log *logging.Logger,
) *Service {
	if log == nil {
		log = logging.Default()
	}
	return &Service{
		store:     store,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

// Create accepts one transaction. The insert and the downstream publish
// commit together: a publish failure rolls the insert back so no
// transaction exists without its pipeline event.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*models.Transaction, error) {
	now := s.now().UTC()
	txn := &models.Transaction{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		MerchantID:    req.MerchantID,
		Country:       req.Country,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     now,
	}

	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		if err := tx.SaveTransaction(ctx, txn); err != nil {
			return err
		}

		event := &events.TransactionCreatedEvent{
			EventID:       uuid.NewString(),
			OccurredAt:    now,
			TransactionID: txn.ID,
			UserID:        txn.UserID,
			Amount:        txn.Amount,
			Currency:      txn.Currency,
			MerchantID:    txn.MerchantID,
			Country:       txn.Country,
			PaymentMethod: string(txn.PaymentMethod),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			return fmt.Errorf("publish transaction event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAccepted()
	s.log.Info("transaction accepted",
		logging.TransactionID(txn.ID),
		logging.UserID(txn.UserID),
		"amount", txn.Amount.String(),
		"currency", txn.Currency)
	return txn, nil
}

// Get loads one transaction by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}
