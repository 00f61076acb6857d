package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cobrax/tenauth/internal/auth/store"
)

// Sweeper is anything with periodic in-memory state to prune. The rate
// limiter implements it.
type Sweeper interface {
	Sweep() int
}

// HousekeepingService periodically cleans up expired database records and
// sweeps in-memory limiter state to prevent unbounded growth.
type HousekeepingService struct {
	Store          store.Store
	Logger         *slog.Logger
	Interval       time.Duration
	EventRetention time.Duration
	Sweepers       []Sweeper

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour. If eventRetention is 0 or
// negative, security events are kept for 90 days.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, eventRetention time.Duration, sweepers ...Sweeper) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if eventRetention <= 0 {
		eventRetention = 90 * 24 * time.Hour
	}

	return &HousekeepingService{
		Store:          store,
		Logger:         logger,
		Interval:       interval,
		EventRetention: eventRetention,
		Sweepers:       sweepers,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup performs the actual deletion of expired records.
// Each deletion is independent - failures in one won't stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	s.Logger.Info("starting housekeeping cleanup")

	var successful int

	// Access codes are never deleted. Spent and expired rows stay behind as
	// the audit trail for every exchange attempt.

	if err := s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx); err != nil {
		s.Logger.Error("failed to delete expired refresh tokens", "error", err)
	} else {
		s.Logger.Debug("deleted expired refresh tokens")
		successful++
	}

	cutoff := time.Now().UTC().Add(-s.EventRetention)
	if err := s.Store.SecurityEvents().DeleteSecurityEventsBefore(ctx, cutoff); err != nil {
		s.Logger.Error("failed to prune old security events", "error", err)
	} else {
		s.Logger.Debug("pruned old security events", "cutoff", cutoff)
		successful++
	}

	for _, sw := range s.Sweepers {
		removed := sw.Sweep()
		s.Logger.Debug("swept limiter state", "removed", removed)
	}

	s.Logger.Info("housekeeping cleanup completed", "successful_cleanups", successful)
}
