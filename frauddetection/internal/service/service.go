// Package service orchestrates fraud detection for inbound transaction
// events: dedup check, history facts, rule evaluation, history append,
// marker write, and conditional downstream publish — all inside one
// transaction.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fraudwatch-systems/fraudwatch-stack/common/logging"
	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/events"
	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/metrics"
	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/models"
	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/repository"
	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/rules"
)

// RuleVersion is stamped on every emitted FraudDetectedEvent.
const RuleVersion = "v1.0.0"

// Publisher publishes fraud events downstream. A publish failure must
// surface as an error so the enclosing transaction aborts.
type Publisher interface {
	Publish(ctx context.Context, event *events.FraudDetectedEvent) error
}

// Service is the transaction-stage event processor.
type Service struct {
	store          repository.Store
	engine         *rules.Engine
	publisher      Publisher
	velocityWindow time.Duration
	metrics        *metrics.Metrics
	log            *logging.Logger
	now            func() time.Time
}

// NewService wires the event processor.
func NewService(
	store repository.Store,
	engine *rules.Engine,
	publisher Publisher,
	velocityWindow time.Duration,
	m *metrics.Metrics,
	log *logging.Logger,
) *Service {
	if log == nil {
		log = logging.Default()
	}
	return &Service{
		store:          store,
		engine:         engine,
		publisher:      publisher,
		velocityWindow: velocityWindow,
		metrics:        m,
		log:            log,
		now:            time.Now,
	}
}

// Process handles one transaction event exactly once. Redeliveries of an
// already-processed event return nil without side effects. Everything
// else — history append, marker write, downstream publish — commits or
// rolls back as one unit.
func (s *Service) Process(ctx context.Context, event *events.TransactionCreatedEvent) error {
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		processed, err := tx.EventProcessed(ctx, event.EventID)
		if err != nil {
			return err
		}
		if processed {
			s.log.Info("event already processed, skipping",
				logging.EventID(event.EventID),
				logging.TransactionID(event.TransactionID))
			return nil
		}

		occurredAt := s.now().UTC()
		if event.OccurredAt != nil {
			occurredAt = *event.OccurredAt
		}

		recentCount, err := tx.CountRecentTransactions(ctx, event.UserID, occurredAt.Add(-s.velocityWindow))
		if err != nil {
			return err
		}

		lastTransaction, err := tx.LatestTransaction(ctx, event.UserID)
		if err != nil {
			return err
		}

		evaluation := s.engine.Evaluate(event, lastTransaction, recentCount, occurredAt)

		if err := tx.SaveHistory(ctx, historyFromEvent(event, occurredAt)); err != nil {
			return err
		}
		if err := tx.SaveMarker(ctx, event.EventID, occurredAt); err != nil {
			return err
		}

		s.metrics.RecordEvaluation(evaluation.Fraudulent)

		if !evaluation.Fraudulent {
			return nil
		}

		out := &events.FraudDetectedEvent{
			EventID:       uuid.NewString(),
			OccurredAt:    s.now().UTC(),
			TransactionID: event.TransactionID,
			UserID:        event.UserID,
			RiskScore:     evaluation.RiskScore,
			Reasons:       evaluation.Reasons,
			RuleVersion:   RuleVersion,
		}
		if err := s.publisher.Publish(ctx, out); err != nil {
			return fmt.Errorf("publish fraud event: %w", err)
		}

		s.log.Warn("fraud detected",
			logging.TransactionID(event.TransactionID),
			logging.UserID(event.UserID),
			"risk_score", evaluation.RiskScore,
			"reasons", evaluation.Reasons)
		return nil
	})

	// A concurrent attempt for the same event won the marker race; the
	// effects exist exactly once, so this delivery is a no-op.
	if errors.Is(err, repository.ErrDuplicateEvent) {
		s.log.Info("event already processed by concurrent attempt, skipping",
			logging.EventID(event.EventID))
		return nil
	}
	return err
}

func historyFromEvent(event *events.TransactionCreatedEvent, occurredAt time.Time) *models.HistoryRecord {
	amount := decimal.Zero
	if event.Amount != nil {
		amount = *event.Amount
	}
	return &models.HistoryRecord{
		TransactionID: event.TransactionID,
		UserID:        event.UserID,
		Amount:        amount,
		Currency:      event.Currency,
		MerchantID:    event.MerchantID,
		Country:       event.Country,
		OccurredAt:    occurredAt,
	}
}
