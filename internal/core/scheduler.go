package core

// scheduler.go runs background maintenance for the transfer store.
//
// The purge job removes grids whose session has been idle longer than the
// store TTL. It is long-running and context-aware for graceful shutdown, and
// logs failures without stopping the application.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPurgeInterval is used when StartPurgeScheduler gets a non-positive interval.
const DefaultPurgeInterval = 10 * time.Minute

// StartPurgeScheduler periodically removes expired grids from the store.
// It runs immediately on start, then every interval, and returns when ctx
// is cancelled.
func (s *Service) StartPurgeScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}
	slog.Info("purge scheduler started", "interval", interval.String())

	// Run immediately on startup
	s.runPurgeJob(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("purge scheduler stopped")
			return
		case <-ticker.C:
			s.runPurgeJob(ctx)
		}
	}
}

// runPurgeJob performs one purge cycle.
func (s *Service) runPurgeJob(ctx context.Context) int {
	start := time.Now()

	purged, err := s.channel.Purge(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("purge failed", "error", err)
		}
		return 0
	}

	if purged > 0 {
		slog.Info("purged expired grids",
			"grids_purged", purged,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	} else {
		slog.Debug("purge job completed", "duration_ms", time.Since(start).Milliseconds())
	}
	return purged
}
