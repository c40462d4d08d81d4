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
// REVIEW APPLICATION COMMAND
// Applies a reviewer's status and/or score change to one application,
// appending the audit entry and publishing the matching events. A move to
// shortlisted also places the candidate into the opening's first round.
// ══════════════════════════════════════════════════════════════════════════════

// ReviewApplicationCommand contains a single review action. At least one of
// NewStatus and NewScore must be set.
type ReviewApplicationCommand struct {
	ApplicationID string
	ReviewerID    string

	// NewStatus moves the application through the state machine when set.
	NewStatus *application.Status

	// NewScore assigns or overwrites the score when set.
	NewScore *float64

	// Comment is an optional reviewer note stored with the audit entry.
	Comment string

	// CorrelationID for tracing across services.
	CorrelationID string
}

// Validate validates the command.
func (c ReviewApplicationCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("review_application: application_id is required")
	}
	if c.ReviewerID == "" {
		return errors.New("review_application: reviewer_id is required")
	}
	if c.NewStatus == nil && c.NewScore == nil {
		return errors.New("review_application: nothing to change")
	}
	// Only round advancement resets a candidate to submitted.
	if c.NewStatus != nil && *c.NewStatus == application.StatusSubmitted {
		return errors.New("review_application: status cannot be set back to submitted")
	}
	return nil
}

// ReviewApplicationResult contains the result of a review action.
type ReviewApplicationResult struct {
	// ApplicationID is the reviewed application.
	ApplicationID string

	// OldStatus and NewStatus reflect the status move, equal when only the
	// score changed.
	OldStatus application.Status
	NewStatus application.Status

	// RoundNumber is the interview round the candidate sits in after the
	// change. A shortlist from outside the pipeline places the candidate
	// into the opening's first round.
	RoundNumber int

	// ChangeKind classifies what the review touched.
	ChangeKind application.ChangeKind

	// HistoryEntryID is the appended audit entry.
	HistoryEntryID string

	// Placed is true when the review selected the candidate and the
	// placement finalizer marked the student placed.
	Placed bool

	// ReviewedAt is when the change was applied.
	ReviewedAt time.Time
}

// PlacementFinalizer marks a student placed when a final selection happens.
// Implemented by FinalizePlacementHandler.
type PlacementFinalizer interface {
	Finalize(ctx context.Context, cmd FinalizePlacementCommand) (*FinalizePlacementResult, error)
}

// ReviewApplicationHandler handles the ReviewApplicationCommand.
type ReviewApplicationHandler struct {
	applicationRepo application.Repository
	historyRepo     application.HistoryRepository
	roundRepo       round.Repository
	finalizer       PlacementFinalizer
	eventPublisher  shared.EventPublisher
}

// NewReviewApplicationHandler creates a new ReviewApplicationHandler.
func NewReviewApplicationHandler(
	applicationRepo application.Repository,
	historyRepo application.HistoryRepository,
	roundRepo round.Repository,
	finalizer PlacementFinalizer,
	eventPublisher shared.EventPublisher,
) *ReviewApplicationHandler {
	return &ReviewApplicationHandler{
		applicationRepo: applicationRepo,
		historyRepo:     historyRepo,
		roundRepo:       roundRepo,
		finalizer:       finalizer,
		eventPublisher:  eventPublisher,
	}
}

// Handle executes the review application command.
func (h *ReviewApplicationHandler) Handle(ctx context.Context, cmd ReviewApplicationCommand) (*ReviewApplicationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("review_application: validation failed: %w", err)
	}

	a, err := h.applicationRepo.GetByID(ctx, cmd.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("review_application: failed to load application: %w", err)
	}

	now := timeutil.Now()
	oldStatus := a.Status
	oldScore := a.Score

	statusChanged := false
	if cmd.NewStatus != nil && *cmd.NewStatus != a.Status {
		if err := a.Transition(*cmd.NewStatus, now); err != nil {
			return nil, err
		}
		statusChanged = true
	}

	scoreChanged := false
	if cmd.NewScore != nil && (oldScore == nil || *oldScore != *cmd.NewScore) {
		if err := a.SetScore(*cmd.NewScore, now); err != nil {
			return nil, err
		}
		scoreChanged = true
	}

	kind, changed := application.ClassifyChange(statusChanged, scoreChanged)
	if !changed {
		// Idempotent re-review: nothing moved, nothing recorded.
		return &ReviewApplicationResult{
			ApplicationID: a.ID,
			OldStatus:     oldStatus,
			NewStatus:     a.Status,
			RoundNumber:   a.RoundNumber,
			ReviewedAt:    now,
		}, nil
	}

	// A shortlist hands the candidate to the round sequencer. A candidate
	// not yet in the pipeline takes a slot in the opening's first round;
	// a candidate re-shortlisted inside its round stays where it is and
	// waits for the round's completion sweep.
	claimedRoundID := ""
	if statusChanged && a.Status == application.StatusShortlisted && a.RoundNumber == 0 {
		first, err := h.roundRepo.GetByOpeningAndNumber(ctx, a.OpeningID, 1)
		if err != nil {
			return nil, fmt.Errorf("review_application: no round to place the candidate in: %w", err)
		}
		if err := h.roundRepo.TryAddCandidate(ctx, first.ID); err != nil {
			return nil, err
		}
		if err := a.EnterRound(first.Number, now); err != nil {
			_ = h.roundRepo.RemoveCandidate(ctx, first.ID)
			return nil, err
		}
		claimedRoundID = first.ID
	}

	if err := h.applicationRepo.Update(ctx, a); err != nil {
		if claimedRoundID != "" {
			_ = h.roundRepo.RemoveCandidate(ctx, claimedRoundID)
		}
		return nil, fmt.Errorf("review_application: failed to save application: %w", err)
	}

	entry := application.NewReviewEntry(uuid.New().String(), a.ID, cmd.ReviewerID, kind, now)
	if statusChanged {
		entry.WithStatusChange(oldStatus, a.Status)
	}
	if scoreChanged {
		entry.WithScoreChange(oldScore, *cmd.NewScore)
	}
	if cmd.Comment != "" {
		entry.WithComment(cmd.Comment)
	}
	if err := h.historyRepo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("review_application: failed to append history: %w", err)
	}

	h.publishEvents(cmd, a, oldStatus, oldScore, statusChanged, scoreChanged)

	result := &ReviewApplicationResult{
		ApplicationID:  a.ID,
		OldStatus:      oldStatus,
		NewStatus:      a.Status,
		RoundNumber:    a.RoundNumber,
		ChangeKind:     kind,
		HistoryEntryID: entry.ID,
		ReviewedAt:     now,
	}

	// A final selection places the student. The finalizer rejects the
	// second placement when two openings select the same student.
	if statusChanged && a.Status == application.StatusSelected {
		finalizeRes, err := h.finalizer.Finalize(ctx, FinalizePlacementCommand{
			ApplicationID: a.ID,
			CorrelationID: cmd.CorrelationID,
		})
		if err != nil {
			return nil, err
		}
		result.Placed = finalizeRes.Placed
	}

	return result, nil
}

func (h *ReviewApplicationHandler) publishEvents(
	cmd ReviewApplicationCommand,
	a *application.Application,
	oldStatus application.Status,
	oldScore *float64,
	statusChanged, scoreChanged bool,
) {
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
	if scoreChanged {
		event := shared.NewApplicationScoreUpdatedEvent(
			a.ID, a.StudentID, a.OpeningID,
			oldScore, *a.Score, cmd.ReviewerID,
		)
		if cmd.CorrelationID != "" {
			event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		_ = h.eventPublisher.Publish(event)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BULK REVIEW COMMAND
// Applies one review action to many applications with per-item results.
// ══════════════════════════════════════════════════════════════════════════════

// BulkReviewCommand applies the same status/score change to many applications.
type BulkReviewCommand struct {
	ApplicationIDs []string
	ReviewerID     string
	NewStatus      *application.Status
	NewScore       *float64
	Comment        string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c BulkReviewCommand) Validate() error {
	if len(c.ApplicationIDs) == 0 {
		return errors.New("bulk_review: application_ids are required")
	}
	if c.ReviewerID == "" {
		return errors.New("bulk_review: reviewer_id is required")
	}
	if c.NewStatus == nil && c.NewScore == nil {
		return errors.New("bulk_review: nothing to change")
	}
	return nil
}

// BulkReviewResult contains per-item outcomes of a bulk review.
type BulkReviewResult struct {
	// SucceededCount is the number of applications changed.
	SucceededCount int

	// FailedCount is the number of applications that rejected the change.
	FailedCount int

	// Errors contains failures by application ID. A failed item never
	// blocks the rest of the batch.
	Errors map[string]error

	// CompletedAt is when the batch finished.
	CompletedAt time.Time
}

// BulkReviewHandler handles the BulkReviewCommand.
type BulkReviewHandler struct {
	reviewHandler *ReviewApplicationHandler
}

// NewBulkReviewHandler creates a new BulkReviewHandler.
func NewBulkReviewHandler(reviewHandler *ReviewApplicationHandler) *BulkReviewHandler {
	return &BulkReviewHandler{reviewHandler: reviewHandler}
}

// Handle executes the bulk review command sequentially. Each item is its own
// unit of work: a terminal application or an invalid transition fails that
// item alone.
func (h *BulkReviewHandler) Handle(ctx context.Context, cmd BulkReviewCommand) (*BulkReviewResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("bulk_review: validation failed: %w", err)
	}

	result := &BulkReviewResult{
		Errors: make(map[string]error),
	}

	for _, id := range cmd.ApplicationIDs {
		itemCmd := ReviewApplicationCommand{
			ApplicationID: id,
			ReviewerID:    cmd.ReviewerID,
			NewStatus:     cmd.NewStatus,
			NewScore:      cmd.NewScore,
			Comment:       cmd.Comment,
			CorrelationID: cmd.CorrelationID,
		}
		if _, err := h.reviewHandler.Handle(ctx, itemCmd); err != nil {
			result.FailedCount++
			result.Errors[id] = err
			continue
		}
		result.SucceededCount++
	}

	result.CompletedAt = timeutil.Now()
	return result, nil
}
