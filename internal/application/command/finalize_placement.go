package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/application"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/internal/domain/student"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// FINALIZE PLACEMENT COMMAND
// Marks the student placed after a final selection. Placement is exclusive:
// when two openings select the same student concurrently, the first writer
// wins and the second call fails with ErrStudentAlreadyPlaced.
// ══════════════════════════════════════════════════════════════════════════════

// FinalizePlacementCommand contains the data needed to finalize a placement.
type FinalizePlacementCommand struct {
	ApplicationID string

	// CorrelationID for tracing across services.
	CorrelationID string
}

// Validate validates the command.
func (c FinalizePlacementCommand) Validate() error {
	if c.ApplicationID == "" {
		return errors.New("finalize_placement: application_id is required")
	}
	return nil
}

// FinalizePlacementResult contains the result of finalization.
type FinalizePlacementResult struct {
	// StudentID is the placed student.
	StudentID string

	// OpeningID is the opening that placed the student.
	OpeningID string

	// Placed is true when this call performed the placement. It is false
	// only for idempotent re-runs where this opening already placed the
	// student; a competing opening's placement is an error instead.
	Placed bool

	// PlacedAt is the placement instant.
	PlacedAt time.Time
}

// FinalizePlacementHandler handles the FinalizePlacementCommand.
type FinalizePlacementHandler struct {
	applicationRepo application.Repository
	studentRepo     student.Repository
	studentCache    student.Cache
	eventPublisher  shared.EventPublisher
}

// NewFinalizePlacementHandler creates a new FinalizePlacementHandler.
func NewFinalizePlacementHandler(
	applicationRepo application.Repository,
	studentRepo student.Repository,
	studentCache student.Cache,
	eventPublisher shared.EventPublisher,
) *FinalizePlacementHandler {
	return &FinalizePlacementHandler{
		applicationRepo: applicationRepo,
		studentRepo:     studentRepo,
		studentCache:    studentCache,
		eventPublisher:  eventPublisher,
	}
}

// Finalize implements PlacementFinalizer.
func (h *FinalizePlacementHandler) Finalize(ctx context.Context, cmd FinalizePlacementCommand) (*FinalizePlacementResult, error) {
	return h.Handle(ctx, cmd)
}

// Handle executes the finalize placement command.
func (h *FinalizePlacementHandler) Handle(ctx context.Context, cmd FinalizePlacementCommand) (*FinalizePlacementResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("finalize_placement: validation failed: %w", err)
	}

	a, err := h.applicationRepo.GetByID(ctx, cmd.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("finalize_placement: failed to load application: %w", err)
	}
	if a.Status != application.StatusSelected {
		return nil, shared.NewDomainError("placement", "Finalize", shared.ErrInvalidState,
			fmt.Sprintf("application %s is %s, not selected", a.ID, a.Status))
	}

	now := timeutil.Now()

	// Conditional update: flips placed only when it is still false.
	err = h.studentRepo.MarkPlaced(ctx, a.StudentID, a.OpeningID, now)
	if err != nil {
		if errors.Is(err, shared.ErrStudentAlreadyPlaced) {
			s, loadErr := h.studentRepo.GetByID(ctx, a.StudentID)
			if loadErr == nil && s.IsPlacedBy(a.OpeningID) {
				// Re-run of the same placement: report without rewriting.
				return &FinalizePlacementResult{
					StudentID: s.ID,
					OpeningID: a.OpeningID,
					Placed:    false,
					PlacedAt:  s.PlacedAt,
				}, nil
			}
		}
		return nil, err
	}

	if h.studentCache != nil {
		_ = h.studentCache.Invalidate(ctx, a.StudentID)
	}

	event := shared.NewStudentPlacedEvent(a.StudentID, a.OpeningID, a.ID)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &FinalizePlacementResult{
		StudentID: a.StudentID,
		OpeningID: a.OpeningID,
		Placed:    true,
		PlacedAt:  now,
	}, nil
}
