package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-placement-hub/internal/domain/application"
	"github.com/campus-hub/campus-placement-hub/internal/domain/round"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD CANDIDATE COMMAND
// Moves an application into an interview round: shortlists it, assigns the
// round, and takes one capacity slot. The slot is taken atomically first so
// two concurrent adds never overshoot the capacity.
// ══════════════════════════════════════════════════════════════════════════════

// AddCandidateCommand contains the data needed to add a candidate to a round.
type AddCandidateCommand struct {
	RoundID       string
	ApplicationID string
	ReviewerID    string

	// CorrelationID for tracing across services.
	CorrelationID string
}

// Validate validates the command.
func (c AddCandidateCommand) Validate() error {
	if c.RoundID == "" {
		return errors.New("add_candidate: round_id is required")
	}
	if c.ApplicationID == "" {
		return errors.New("add_candidate: application_id is required")
	}
	if c.ReviewerID == "" {
		return errors.New("add_candidate: reviewer_id is required")
	}
	return nil
}

// AddCandidateResult contains the result of adding a candidate.
type AddCandidateResult struct {
	// ApplicationID is the moved application.
	ApplicationID string

	// RoundNumber is the round the candidate now sits in.
	RoundNumber int

	// Shortlisted is true when the add transitioned the application to
	// shortlisted (false when it already was).
	Shortlisted bool
}

// AddCandidateHandler handles the AddCandidateCommand.
type AddCandidateHandler struct {
	roundRepo       round.Repository
	applicationRepo application.Repository
	historyRepo     application.HistoryRepository
	eventPublisher  shared.EventPublisher
}

// NewAddCandidateHandler creates a new AddCandidateHandler.
func NewAddCandidateHandler(
	roundRepo round.Repository,
	applicationRepo application.Repository,
	historyRepo application.HistoryRepository,
	eventPublisher shared.EventPublisher,
) *AddCandidateHandler {
	return &AddCandidateHandler{
		roundRepo:       roundRepo,
		applicationRepo: applicationRepo,
		historyRepo:     historyRepo,
		eventPublisher:  eventPublisher,
	}
}

// Handle executes the add candidate command.
func (h *AddCandidateHandler) Handle(ctx context.Context, cmd AddCandidateCommand) (*AddCandidateResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("add_candidate: validation failed: %w", err)
	}

	r, err := h.roundRepo.GetByID(ctx, cmd.RoundID)
	if err != nil {
		return nil, fmt.Errorf("add_candidate: failed to load round: %w", err)
	}

	a, err := h.applicationRepo.GetByID(ctx, cmd.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("add_candidate: failed to load application: %w", err)
	}
	if a.OpeningID != r.OpeningID {
		return nil, shared.NewDomainError("round", "AddCandidate", shared.ErrInvalidInput,
			"application belongs to a different opening")
	}
	if a.RoundNumber >= r.Number {
		return nil, shared.NewDomainError("round", "AddCandidate", shared.ErrInvalidState,
			fmt.Sprintf("candidate already reached round %d", a.RoundNumber))
	}

	now := timeutil.Now()
	oldStatus := a.Status

	// Shortlist first so the round entry is legal.
	shortlisted := false
	if a.Status != application.StatusShortlisted {
		if err := a.Transition(application.StatusShortlisted, now); err != nil {
			return nil, err
		}
		shortlisted = true
	}

	// Claim the capacity slot before persisting the application: on a
	// full round nothing has changed yet.
	if err := h.roundRepo.TryAddCandidate(ctx, r.ID); err != nil {
		return nil, err
	}

	if err := a.EnterRound(r.Number, now); err != nil {
		// Give the claimed slot back.
		_ = h.roundRepo.RemoveCandidate(ctx, r.ID)
		return nil, err
	}

	if err := h.applicationRepo.Update(ctx, a); err != nil {
		_ = h.roundRepo.RemoveCandidate(ctx, r.ID)
		return nil, fmt.Errorf("add_candidate: failed to save application: %w", err)
	}

	if shortlisted {
		entry := application.NewReviewEntry(uuid.New().String(), a.ID, cmd.ReviewerID, application.ChangeStatus, now).
			WithStatusChange(oldStatus, a.Status)
		if err := h.historyRepo.Append(ctx, entry); err != nil {
			return nil, fmt.Errorf("add_candidate: failed to append history: %w", err)
		}

		event := shared.NewApplicationStatusChangedEvent(
			a.ID, a.StudentID, a.OpeningID,
			string(oldStatus), string(a.Status), cmd.ReviewerID,
		)
		if cmd.CorrelationID != "" {
			event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		_ = h.eventPublisher.Publish(event)
	}

	return &AddCandidateResult{
		ApplicationID: a.ID,
		RoundNumber:   r.Number,
		Shortlisted:   shortlisted,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REMOVE CANDIDATE COMMAND
// Withdraws a candidate from its round: the round reference is cleared,
// the application is rejected, and the capacity slot is released.
// ══════════════════════════════════════════════════════════════════════════════

// RemoveCandidateCommand withdraws a candidate from its current round.
type RemoveCandidateCommand struct {
	RoundID       string
	ApplicationID string
	ReviewerID    string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RemoveCandidateCommand) Validate() error {
	if c.RoundID == "" {
		return errors.New("remove_candidate: round_id is required")
	}
	if c.ApplicationID == "" {
		return errors.New("remove_candidate: application_id is required")
	}
	if c.ReviewerID == "" {
		return errors.New("remove_candidate: reviewer_id is required")
	}
	return nil
}

// RemoveCandidateHandler handles the RemoveCandidateCommand.
type RemoveCandidateHandler struct {
	roundRepo       round.Repository
	applicationRepo application.Repository
	historyRepo     application.HistoryRepository
	eventPublisher  shared.EventPublisher
}

// NewRemoveCandidateHandler creates a new RemoveCandidateHandler.
func NewRemoveCandidateHandler(
	roundRepo round.Repository,
	applicationRepo application.Repository,
	historyRepo application.HistoryRepository,
	eventPublisher shared.EventPublisher,
) *RemoveCandidateHandler {
	return &RemoveCandidateHandler{
		roundRepo:       roundRepo,
		applicationRepo: applicationRepo,
		historyRepo:     historyRepo,
		eventPublisher:  eventPublisher,
	}
}

// Handle executes the remove candidate command.
func (h *RemoveCandidateHandler) Handle(ctx context.Context, cmd RemoveCandidateCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("remove_candidate: validation failed: %w", err)
	}

	r, err := h.roundRepo.GetByID(ctx, cmd.RoundID)
	if err != nil {
		return fmt.Errorf("remove_candidate: failed to load round: %w", err)
	}

	a, err := h.applicationRepo.GetByID(ctx, cmd.ApplicationID)
	if err != nil {
		return fmt.Errorf("remove_candidate: failed to load application: %w", err)
	}
	if a.RoundNumber != r.Number || a.OpeningID != r.OpeningID {
		return shared.NewDomainError("round", "RemoveCandidate", shared.ErrInvalidState,
			"candidate is not in this round")
	}

	now := timeutil.Now()
	oldStatus := a.Status

	if err := a.LeaveRound(now); err != nil {
		return err
	}
	// A removed candidate is out of this opening, not parked for later.
	if err := a.Transition(application.StatusRejected, now); err != nil {
		return err
	}
	if err := h.applicationRepo.Update(ctx, a); err != nil {
		return fmt.Errorf("remove_candidate: failed to save application: %w", err)
	}

	// Counter floors at zero in the store.
	if err := h.roundRepo.RemoveCandidate(ctx, r.ID); err != nil {
		return fmt.Errorf("remove_candidate: failed to release slot: %w", err)
	}

	entry := application.NewReviewEntry(uuid.New().String(), a.ID, cmd.ReviewerID, application.ChangeStatus, now).
		WithStatusChange(oldStatus, a.Status)
	if err := h.historyRepo.Append(ctx, entry); err != nil {
		return fmt.Errorf("remove_candidate: failed to append history: %w", err)
	}

	event := shared.NewApplicationStatusChangedEvent(
		a.ID, a.StudentID, a.OpeningID,
		string(oldStatus), string(a.Status), cmd.ReviewerID,
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return nil
}
