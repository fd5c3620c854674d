package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSweep_PurgesExpiredMarkers(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.markers["evt-old"] = now.Add(-2 * time.Hour)
	store.markers["evt-fresh"] = now.Add(-time.Minute)

	sweeper := NewSweeper(store, time.Minute, time.Hour, nil)
	sweeper.now = func() time.Time { return now }

	sweeper.Sweep(context.Background())

	_, oldKept := store.markers["evt-old"]
	_, freshKept := store.markers["evt-fresh"]
	assert.False(t, oldKept)
	assert.True(t, freshKept)
}

func TestSweep_NothingExpired(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.markers["evt-fresh"] = now

	sweeper := NewSweeper(store, time.Minute, time.Hour, nil)
	sweeper.now = func() time.Time { return now }

	sweeper.Sweep(context.Background())
	assert.Len(t, store.markers, 1)
}

func TestRun_StopsOnCancel(t *testing.T) {
	store := newFakeStore()
	sweeper := NewSweeper(store, time.Millisecond, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
