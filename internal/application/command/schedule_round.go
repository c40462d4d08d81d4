package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/round"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE ROUND COMMAND
// Appends the next interview round to an opening's sequence. Round numbers
// are contiguous from 1; gaps and collisions are rejected.
// ══════════════════════════════════════════════════════════════════════════════

// ScheduleRoundCommand contains the data needed to schedule a round.
type ScheduleRoundCommand struct {
	OpeningID     string
	Number        int
	Name          string
	ScheduledAt   time.Time
	MaxCandidates *int

	// CorrelationID for tracing across services.
	CorrelationID string
}

// Validate validates the command.
func (c ScheduleRoundCommand) Validate() error {
	if c.OpeningID == "" {
		return errors.New("schedule_round: opening_id is required")
	}
	if c.Number < 1 {
		return errors.New("schedule_round: number must be at least 1")
	}
	if c.Name == "" {
		return errors.New("schedule_round: name is required")
	}
	if c.ScheduledAt.IsZero() {
		return errors.New("schedule_round: scheduled_at is required")
	}
	return nil
}

// ScheduleRoundResult contains the result of scheduling.
type ScheduleRoundResult struct {
	// RoundID is the internal ID of the created round.
	RoundID string

	// Number is the round's position in the sequence.
	Number int
}

// ScheduleRoundHandler handles the ScheduleRoundCommand.
type ScheduleRoundHandler struct {
	openingRepo    opening.Repository
	roundRepo      round.Repository
	eventPublisher shared.EventPublisher
}

// NewScheduleRoundHandler creates a new ScheduleRoundHandler.
func NewScheduleRoundHandler(
	openingRepo opening.Repository,
	roundRepo round.Repository,
	eventPublisher shared.EventPublisher,
) *ScheduleRoundHandler {
	return &ScheduleRoundHandler{
		openingRepo:    openingRepo,
		roundRepo:      roundRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the schedule round command.
func (h *ScheduleRoundHandler) Handle(ctx context.Context, cmd ScheduleRoundCommand) (*ScheduleRoundResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("schedule_round: validation failed: %w", err)
	}

	now := timeutil.Now()
	if cmd.ScheduledAt.Before(now) {
		return nil, shared.NewDomainError("round", "Schedule", shared.ErrPastDate, "round cannot be scheduled in the past")
	}

	o, err := h.openingRepo.GetByID(ctx, cmd.OpeningID)
	if err != nil {
		return nil, fmt.Errorf("schedule_round: failed to load opening: %w", err)
	}
	if o.Status == opening.StatusCompleted {
		return nil, shared.ErrOpeningInactive
	}

	highest, err := h.roundRepo.MaxNumber(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("schedule_round: failed to read round sequence: %w", err)
	}
	if cmd.Number != highest+1 {
		if cmd.Number <= highest {
			return nil, shared.ErrRoundNumberTaken
		}
		return nil, shared.ErrRoundNotOrdered
	}

	r, err := round.NewRound(round.NewRoundParams{
		ID:            uuid.New().String(),
		OpeningID:     o.ID,
		Number:        cmd.Number,
		Name:          cmd.Name,
		ScheduledAt:   cmd.ScheduledAt,
		MaxCandidates: cmd.MaxCandidates,
	}, now)
	if err != nil {
		return nil, fmt.Errorf("schedule_round: %w", err)
	}

	// The unique constraint on (opening, number) still guards the race
	// between two concurrent schedule calls reading the same MaxNumber.
	if err := h.roundRepo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("schedule_round: failed to save round: %w", err)
	}

	event := shared.NewRoundScheduledEvent(r.ID, o.ID, r.Number, r.Name, r.ScheduledAt)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &ScheduleRoundResult{RoundID: r.ID, Number: r.Number}, nil
}
