// Package jobs contains implementations of scheduled jobs for Campus Placement Hub.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLOSE EXPIRED WINDOWS JOB
// ══════════════════════════════════════════════════════════════════════════════

// CloseExpiredWindowsJob deactivates application windows whose closing instant
// has passed. Window openness is always evaluated against the clock, so the
// sweep changes nothing a reader could observe; it exists to keep the active
// set small and to emit the window_closed event exactly once per window.
type CloseExpiredWindowsJob struct {
	windowRepo     opening.WindowRepository
	windowCache    opening.WindowCache
	eventPublisher shared.EventPublisher
	logger         *slog.Logger

	lastSweep atomic.Value // *SweepStats
}

// SweepStats summarizes one sweep run.
type SweepStats struct {
	StartedAt time.Time
	Duration  time.Duration
	Examined  int
	Closed    int
	Failed    int
}

// NewCloseExpiredWindowsJob creates the window-closing sweep.
func NewCloseExpiredWindowsJob(
	windowRepo opening.WindowRepository,
	windowCache opening.WindowCache,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
) *CloseExpiredWindowsJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloseExpiredWindowsJob{
		windowRepo:     windowRepo,
		windowCache:    windowCache,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Name implements scheduler.Job.
func (j *CloseExpiredWindowsJob) Name() string {
	return "close_expired_windows"
}

// Description implements scheduler.Job.
func (j *CloseExpiredWindowsJob) Description() string {
	return "Deactivates application windows past their closing instant"
}

// Run executes the sweep.
func (j *CloseExpiredWindowsJob) Run(ctx context.Context) error {
	now := timeutil.Now()
	stats := &SweepStats{StartedAt: now}
	defer func() {
		stats.Duration = time.Since(stats.StartedAt)
		j.lastSweep.Store(stats)
	}()

	windows, err := j.windowRepo.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("close_windows: load active windows: %w", err)
	}
	stats.Examined = len(windows)

	for _, w := range windows {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !now.After(w.ClosesAt()) {
			continue
		}

		w.Deactivate()
		if err := j.windowRepo.Update(ctx, w); err != nil {
			stats.Failed++
			j.logger.Error("failed to close window", "window_id", w.ID, "error", err)
			continue
		}

		if j.windowCache != nil {
			_ = j.windowCache.Invalidate(ctx, w.ID)
		}
		_ = j.eventPublisher.Publish(shared.NewWindowClosedEvent(w.ID, w.OpeningID, w.ClosesAt()))

		stats.Closed++
		j.logger.Info("window closed", "window_id", w.ID, "opening_id", w.OpeningID)
	}

	if stats.Closed > 0 || stats.Failed > 0 {
		j.logger.Info("window sweep finished",
			"examined", stats.Examined,
			"closed", stats.Closed,
			"failed", stats.Failed,
		)
	}
	return nil
}

// LastSweep returns stats from the most recent run, or nil before the first.
func (j *CloseExpiredWindowsJob) LastSweep() *SweepStats {
	v, _ := j.lastSweep.Load().(*SweepStats)
	return v
}
