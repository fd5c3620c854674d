// Package service orchestrates alert creation for inbound fraud events:
// dedup check, alert persistence, and marker write inside one
// transaction, then notification fan-out after commit.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/events"
	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/metrics"
	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/models"
	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/repository"
	"github.com/fraudwatch-systems/fraudwatch-stack/common/logging"
)

// Notifier fans a committed alert out to the configured channels.
// Delivery problems stay inside the notifier; they never affect event
// processing.
type Notifier interface {
	NotifyFraud(ctx context.Context, alert *models.Alert)
}

// Service is the alert-stage event processor.
type Service struct {
	store    repository.Store
	notifier Notifier
	metrics  *metrics.Metrics
	log      *logging.Logger
	now      func() time.Time
}

// NewService wires the event processor.
func NewService(
	store repository.Store,
	notifier Notifier,
	m *metrics.Metrics,
	log *logging.Logger,
) *Service {
	if log == nil {
		log = logging.Default()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// Process handles one fraud event exactly once. Redeliveries of an
// already-processed event return nil without side effects. Alert and
// marker commit as one unit; notifications go out only after the commit,
// so a duplicate delivery never notifies twice.
func (s *Service) Process(ctx context.Context, event *events.FraudDetectedEvent) error {
	var alert *models.Alert

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

		now := s.now().UTC()
		alert = models.NewAlertFromEvent(event, now)

		if err := tx.SaveAlert(ctx, alert); err != nil {
			return err
		}
		return tx.SaveMarker(ctx, event.EventID, now)
	})

	// A concurrent attempt for the same event won the marker race; the
	// alert exists exactly once, so this delivery is a no-op.
	if errors.Is(err, repository.ErrDuplicateEvent) {
		s.log.Info("event already processed by concurrent attempt, skipping",
			logging.EventID(event.EventID))
		return nil
	}
	if err != nil {
		return err
	}
	if alert == nil {
		return nil
	}

	s.metrics.RecordAlertCreated(alert.RiskScore)
	s.log.Warn("fraud alert created",
		logging.AlertID(alert.ID),
		logging.TransactionID(alert.TransactionID),
		logging.UserID(alert.UserID),
		"risk_score", alert.RiskScore,
		"reasons", alert.Reasons)

	s.notifier.NotifyFraud(ctx, alert)
	return nil
}

// ListAlerts returns recent alerts newest first.
func (s *Service) ListAlerts(ctx context.Context, limit int) ([]*models.Alert, error) {
	return s.store.ListAlerts(ctx, limit)
}

// ListAlertsByUser returns a user's alerts newest first.
func (s *Service) ListAlertsByUser(ctx context.Context, userID string, limit int) ([]*models.Alert, error) {
	return s.store.ListAlertsByUser(ctx, userID, limit)
}
