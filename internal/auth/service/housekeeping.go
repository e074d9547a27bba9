package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/emsdesk/emsdesk/internal/auth/store"
)

// HousekeepingService periodically deletes expired OTP rows and token rows
// old enough that their refresh token can no longer be valid.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// TokenRetention is how long token rows are kept before purging. It
	// should be at least the refresh token lifetime.
	TokenRetention time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the background cleaner. A non-positive
// interval defaults to 1 hour; a non-positive retention defaults to 14 days.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if retention <= 0 {
		retention = 14 * 24 * time.Hour
	}

	return &HousekeepingService{
		Store:          st,
		Logger:         logger,
		Interval:       interval,
		TokenRetention: retention,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts the worker down, blocking until any in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep once on startup.
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

// cleanup performs the deletions. Each is independent; one failing doesn't
// stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	s.Logger.Debug("starting housekeeping sweep")

	if err := s.Store.OTPs().DeleteExpiredOTPs(ctx); err != nil {
		s.Logger.Error("failed to delete expired OTPs", "error", err)
	}

	cutoff := time.Now().UTC().Add(-s.TokenRetention)
	if err := s.Store.Tokens().DeleteTokensCreatedBefore(ctx, cutoff); err != nil {
		s.Logger.Error("failed to delete expired tokens", "error", err)
	}

	s.Logger.Debug("housekeeping sweep completed")
}
