package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-placement-hub/internal/domain/application"
	"github.com/campus-hub/campus-placement-hub/internal/domain/round"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE ROUND COMMAND
// Sweeps every candidate sitting in the round: passers move to the next
// round and drop back to submitted for its review cycle, failers are
// rejected. When no next round is scheduled the round is terminal and
// passers are selected instead. Each candidate is its own unit of work so
// a partial failure never blocks the rest, and re-running the sweep skips
// already-moved candidates.
// ══════════════════════════════════════════════════════════════════════════════

// RoundOutcome is a recruiter's verdict for one candidate of the round.
type RoundOutcome struct {
	ApplicationID string
	Passed        bool
	Score         *float64
}

// CompleteRoundCommand contains the data needed to complete a round.
type CompleteRoundCommand struct {
	RoundID    string
	ReviewerID string

	// Outcomes lists the verdicts. Candidates in the round without an
	// outcome are left untouched.
	Outcomes []RoundOutcome

	// CorrelationID for tracing across services.
	CorrelationID string
}

// Validate validates the command.
func (c CompleteRoundCommand) Validate() error {
	if c.RoundID == "" {
		return errors.New("complete_round: round_id is required")
	}
	if c.ReviewerID == "" {
		return errors.New("complete_round: reviewer_id is required")
	}
	if len(c.Outcomes) == 0 {
		return errors.New("complete_round: outcomes are required")
	}
	return nil
}

// CompleteRoundResult contains per-candidate outcomes of the sweep.
type CompleteRoundResult struct {
	// RoundID is the completed round.
	RoundID string

	// AdvancedCount is the number of candidates moved to the next round.
	AdvancedCount int

	// SelectedCount is the number of candidates selected (final round).
	SelectedCount int

	// RejectedCount is the number of candidates rejected.
	RejectedCount int

	// SkippedCount is the number of already-processed candidates the
	// re-run left untouched.
	SkippedCount int

	// FailedCount is the number of candidates whose write failed.
	FailedCount int

	// Errors contains failures by application ID.
	Errors map[string]error

	// CompletedAt is when the sweep finished.
	CompletedAt time.Time
}

// CompleteRoundHandler handles the CompleteRoundCommand.
type CompleteRoundHandler struct {
	roundRepo       round.Repository
	applicationRepo application.Repository
	historyRepo     application.HistoryRepository
	finalizer       PlacementFinalizer
	eventPublisher  shared.EventPublisher
}

// NewCompleteRoundHandler creates a new CompleteRoundHandler.
func NewCompleteRoundHandler(
	roundRepo round.Repository,
	applicationRepo application.Repository,
	historyRepo application.HistoryRepository,
	finalizer PlacementFinalizer,
	eventPublisher shared.EventPublisher,
) *CompleteRoundHandler {
	return &CompleteRoundHandler{
		roundRepo:       roundRepo,
		applicationRepo: applicationRepo,
		historyRepo:     historyRepo,
		finalizer:       finalizer,
		eventPublisher:  eventPublisher,
	}
}

// Handle executes the complete round command.
func (h *CompleteRoundHandler) Handle(ctx context.Context, cmd CompleteRoundCommand) (*CompleteRoundResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("complete_round: validation failed: %w", err)
	}

	r, err := h.roundRepo.GetByID(ctx, cmd.RoundID)
	if err != nil {
		return nil, fmt.Errorf("complete_round: failed to load round: %w", err)
	}
	if r.Status == round.StatusCancelled {
		return nil, shared.ErrRoundCompleted
	}

	// A round is terminal exactly when no next round is scheduled for the
	// opening: passers of the terminal round are selected, passers of any
	// other round advance.
	next, err := h.roundRepo.GetByOpeningAndNumber(ctx, r.OpeningID, r.Number+1)
	if err != nil {
		if !errors.Is(err, shared.ErrRoundNotFound) {
			return nil, fmt.Errorf("complete_round: failed to look up next round: %w", err)
		}
		next = nil
	}

	result := &CompleteRoundResult{
		RoundID: r.ID,
		Errors:  make(map[string]error),
	}

	now := timeutil.Now()
	for _, outcome := range cmd.Outcomes {
		if err := h.processOutcome(ctx, cmd, r, next, outcome, now, result); err != nil {
			result.FailedCount++
			result.Errors[outcome.ApplicationID] = err
		}
	}

	// Mark the round completed once, tolerating re-runs.
	if err := r.Complete(); err == nil {
		if err := h.roundRepo.Update(ctx, r); err != nil {
			return nil, fmt.Errorf("complete_round: failed to save round: %w", err)
		}
		event := shared.NewRoundCompletedEvent(
			r.ID, r.OpeningID, r.Number,
			result.AdvancedCount, result.SelectedCount, result.RejectedCount,
		)
		if cmd.CorrelationID != "" {
			event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		_ = h.eventPublisher.Publish(event)
	}

	result.CompletedAt = timeutil.Now()
	return result, nil
}

// processOutcome applies one candidate verdict. Already-processed
// candidates are skipped so the sweep is safe to re-run.
func (h *CompleteRoundHandler) processOutcome(
	ctx context.Context,
	cmd CompleteRoundCommand,
	r *round.Round,
	next *round.Round,
	outcome RoundOutcome,
	now time.Time,
	result *CompleteRoundResult,
) error {
	a, err := h.applicationRepo.GetByID(ctx, outcome.ApplicationID)
	if err != nil {
		return err
	}
	if a.OpeningID != r.OpeningID {
		return shared.NewDomainError("round", "Complete", shared.ErrInvalidInput,
			"application belongs to a different opening")
	}

	// Re-run detection: terminal applications and candidates already past
	// this round were handled by a previous sweep.
	if a.IsTerminal() || a.RoundNumber > r.Number {
		result.SkippedCount++
		return nil
	}
	if a.RoundNumber != r.Number {
		return shared.NewDomainError("round", "Complete", shared.ErrInvalidState,
			fmt.Sprintf("candidate sits in round %d, not %d", a.RoundNumber, r.Number))
	}

	oldStatus := a.Status
	oldScore := a.Score

	scoreChanged := false
	if outcome.Score != nil && (oldScore == nil || *oldScore != *outcome.Score) {
		if err := a.SetScore(*outcome.Score, now); err != nil {
			return err
		}
		scoreChanged = true
	}

	switch {
	case !outcome.Passed:
		if err := a.Transition(application.StatusRejected, now); err != nil {
			return err
		}
	case next == nil:
		if err := a.Transition(application.StatusSelected, now); err != nil {
			return err
		}
	default:
		// Claim the next round's slot first, as in AddCandidate.
		if err := h.roundRepo.TryAddCandidate(ctx, next.ID); err != nil {
			return err
		}
		if err := a.EnterRound(next.Number, now); err != nil {
			_ = h.roundRepo.RemoveCandidate(ctx, next.ID)
			return err
		}
		// Back to submitted: the candidate re-enters the review cycle in
		// the new round.
		if err := a.Transition(application.StatusSubmitted, now); err != nil {
			_ = h.roundRepo.RemoveCandidate(ctx, next.ID)
			return err
		}
	}

	if err := h.applicationRepo.Update(ctx, a); err != nil {
		return err
	}

	statusChanged := a.Status != oldStatus
	kind, changed := application.ClassifyChange(statusChanged, scoreChanged)
	if changed {
		entry := application.NewReviewEntry(uuid.New().String(), a.ID, cmd.ReviewerID, kind, now)
		if statusChanged {
			entry.WithStatusChange(oldStatus, a.Status)
		}
		if scoreChanged {
			entry.WithScoreChange(oldScore, *outcome.Score)
		}
		if err := h.historyRepo.Append(ctx, entry); err != nil {
			return err
		}
	}

	if statusChanged {
		event := shared.NewApplicationStatusChangedEvent(
			a.ID, a.StudentID, a.OpeningID,
			string(oldStatus), string(a.Status), cmd.ReviewerID,
		)
		if cmd.CorrelationID != "" {
			event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		_ = h.eventPublisher.Publish(event)
	}

	switch a.Status {
	case application.StatusRejected:
		result.RejectedCount++
	case application.StatusSelected:
		result.SelectedCount++
		if _, err := h.finalizer.Finalize(ctx, FinalizePlacementCommand{
			ApplicationID: a.ID,
			CorrelationID: cmd.CorrelationID,
		}); err != nil {
			return err
		}
	default:
		result.AdvancedCount++
	}

	return nil
}
