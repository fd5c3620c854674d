package service

import (
	"context"
	"time"

	"github.com/fraudwatch-systems/fraudwatch-stack/common/logging"
)

// RetentionStore is the slice of the repository the sweeper needs.
type RetentionStore interface {
	PurgeMarkersBefore(ctx context.Context, cutoff time.Time) (int64, error)
	PurgeHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper purges expired processed-event markers and history records on a
// fixed interval. Best effort: a missed run is not compensated, only the
// next tick matters.
type Sweeper struct {
	store      RetentionStore
	interval   time.Duration
	markerTTL  time.Duration
	historyTTL time.Duration
	log        *logging.Logger
	now        func() time.Time
}

// NewSweeper builds a retention sweeper.
func NewSweeper(store RetentionStore, interval, markerTTL, historyTTL time.Duration, log *logging.Logger) *Sweeper {
	if log == nil {
		log = logging.Default()
	}
	return &Sweeper{
		store:      store,
		interval:   interval,
		markerTTL:  markerTTL,
		historyTTL: historyTTL,
		log:        log,
		now:        time.Now,
	}
}

// Run sweeps until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.Info("retention sweeper starting",
		"interval", s.interval.String(),
		"marker_ttl", s.markerTTL.String(),
		"history_ttl", s.historyTTL.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("retention sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one purge pass. Each delete is a single atomic range
// delete; only non-zero deletion counts are logged.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.now().UTC()

	markerCutoff := now.Add(-s.markerTTL)
	deleted, err := s.store.PurgeMarkersBefore(ctx, markerCutoff)
	switch {
	case err != nil:
		s.log.Error("failed to purge processed events", logging.Err(err))
	case deleted > 0:
		s.log.Info("purged expired processed events",
			"deleted", deleted, "cutoff", markerCutoff)
	}

	historyCutoff := now.Add(-s.historyTTL)
	deleted, err = s.store.PurgeHistoryBefore(ctx, historyCutoff)
	switch {
	case err != nil:
		s.log.Error("failed to purge transaction history", logging.Err(err))
	case deleted > 0:
		s.log.Info("purged expired transaction history",
			"deleted", deleted, "cutoff", historyCutoff)
	}
}
