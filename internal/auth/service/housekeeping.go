package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/soiree-app/soiree/internal/auth/store"
)

// HousekeepingService periodically purges expired entries from the stores.
// The shared driver expires keys by TTL and reports nothing to do; the
// in-memory driver relies on this sweep to stay bounded. The fallback store
// is swept too: it accumulates windows and dedupe entries written during
// shared-store outages.
type HousekeepingService struct {
	Store    store.Store
	Fallback store.Store // optional
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the service. A non-positive interval
// defaults to 1 hour.
func NewHousekeepingService(st, fallback store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Fallback: fallback,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", "interval", s.Interval)
}

// Stop shuts down the worker, blocking until an in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

// RunOnce performs a single sweep of the primary and fallback stores. Also
// invoked by the cron endpoint.
func (s *HousekeepingService) RunOnce(ctx context.Context) (int, error) {
	removed, err := s.Store.PurgeExpired(ctx)
	if err != nil {
		return removed, err
	}

	if s.Fallback != nil {
		n, err := s.Fallback.PurgeExpired(ctx)
		removed += n
		if err != nil {
			return removed, err
		}
	}

	return removed, nil
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	removed, err := s.RunOnce(context.Background())
	if err != nil {
		s.Logger.Error("housekeeping sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.Logger.Info("housekeeping sweep completed", "removed", removed)
	}
}
