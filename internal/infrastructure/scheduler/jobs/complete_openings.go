package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE EXPIRED OPENINGS JOB
// ══════════════════════════════════════════════════════════════════════════════

// CompleteExpiredOpeningsJob marks active openings as completed once their
// application deadline has passed. Applications already in the pipeline keep
// moving through rounds; only new submissions stop.
type CompleteExpiredOpeningsJob struct {
	openingRepo    opening.Repository
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewCompleteExpiredOpeningsJob creates the opening-completion sweep.
func NewCompleteExpiredOpeningsJob(
	openingRepo opening.Repository,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
) *CompleteExpiredOpeningsJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompleteExpiredOpeningsJob{
		openingRepo:    openingRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Name implements scheduler.Job.
func (j *CompleteExpiredOpeningsJob) Name() string {
	return "complete_expired_openings"
}

// Description implements scheduler.Job.
func (j *CompleteExpiredOpeningsJob) Description() string {
	return "Marks openings as completed after their application deadline"
}

// Run executes the sweep.
func (j *CompleteExpiredOpeningsJob) Run(ctx context.Context) error {
	now := timeutil.Now()

	expired, err := j.openingRepo.GetActivePastDeadline(ctx, now)
	if err != nil {
		return fmt.Errorf("complete_openings: load expired openings: %w", err)
	}

	var completed, failed int
	for _, o := range expired {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		o.MarkCompleted()
		if err := j.openingRepo.Update(ctx, o); err != nil {
			failed++
			j.logger.Error("failed to complete opening", "opening_id", o.ID, "error", err)
			continue
		}

		_ = j.eventPublisher.Publish(shared.NewOpeningCompletedEvent(o.ID, o.Company, "deadline passed"))
		completed++
		j.logger.Info("opening completed", "opening_id", o.ID, "company", o.Company)
	}

	if completed > 0 || failed > 0 {
		j.logger.Info("opening sweep finished",
			"examined", len(expired),
			"completed", completed,
			"failed", failed,
		)
	}
	return nil
}
