package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-placement-hub/internal/domain/application"
	"github.com/campus-hub/campus-placement-hub/internal/domain/eligibility"
	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/internal/domain/student"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLY COMMAND
// Runs the eligibility checks and, on admit, creates the application record
// with a frozen snapshot of the student's academic profile.
// ══════════════════════════════════════════════════════════════════════════════

// ApplyCommand contains the data needed to submit an application.
type ApplyCommand struct {
	StudentID string
	OpeningID string

	// CorrelationID for tracing across services.
	CorrelationID string
}

// Validate validates the command.
func (c ApplyCommand) Validate() error {
	if c.StudentID == "" {
		return errors.New("apply: student_id is required")
	}
	if c.OpeningID == "" {
		return errors.New("apply: opening_id is required")
	}
	return nil
}

// ApplyResult contains the outcome of an apply attempt. Ineligibility is a
// normal outcome carried in the result, not an error: the caller shows the
// reason to the student.
type ApplyResult struct {
	// Eligible reports whether the eligibility checks passed.
	Eligible bool

	// Reason is the user-facing denial reason when Eligible is false.
	Reason string

	// ApplicationID is set when an application was created.
	ApplicationID string

	// AppliedAt is the submission time.
	AppliedAt time.Time
}

// ApplyHandler handles the ApplyCommand.
type ApplyHandler struct {
	studentRepo     student.Repository
	openingRepo     opening.Repository
	windowRepo      opening.WindowRepository
	applicationRepo application.Repository
	eventPublisher  shared.EventPublisher
}

// NewApplyHandler creates a new ApplyHandler.
func NewApplyHandler(
	studentRepo student.Repository,
	openingRepo opening.Repository,
	windowRepo opening.WindowRepository,
	applicationRepo application.Repository,
	eventPublisher shared.EventPublisher,
) *ApplyHandler {
	return &ApplyHandler{
		studentRepo:     studentRepo,
		openingRepo:     openingRepo,
		windowRepo:      windowRepo,
		applicationRepo: applicationRepo,
		eventPublisher:  eventPublisher,
	}
}

// Handle executes the apply command.
func (h *ApplyHandler) Handle(ctx context.Context, cmd ApplyCommand) (*ApplyResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("apply: validation failed: %w", err)
	}

	s, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("apply: failed to load student: %w", err)
	}

	o, err := h.openingRepo.GetByID(ctx, cmd.OpeningID)
	if err != nil {
		return nil, fmt.Errorf("apply: failed to load opening: %w", err)
	}

	now := timeutil.Now()
	if err := o.IsAcceptingApplications(now); err != nil {
		return nil, err
	}

	w, err := h.openWindowFor(ctx, o.ID, now)
	if err != nil {
		return nil, fmt.Errorf("apply: failed to load windows: %w", err)
	}

	alreadyApplied, err := h.applicationRepo.ExistsByStudentAndOpening(ctx, s.ID, o.ID)
	if err != nil {
		return nil, fmt.Errorf("apply: failed to check existing application: %w", err)
	}

	verdict := eligibility.Evaluate(eligibility.Input{
		Student:        s,
		Window:         w,
		Now:            now,
		AlreadyApplied: alreadyApplied,
	})
	if !verdict.Eligible {
		return &ApplyResult{Eligible: false, Reason: verdict.Reason}, nil
	}

	snapshot := application.FormSnapshot{
		Name:      s.Name,
		Email:     s.Email.String(),
		Branch:    s.Branch.String(),
		BatchYear: s.BatchYear.Int(),
		CGPA:      s.CGPA.Float64(),
		Backlogs:  s.Backlogs,
	}

	a, err := application.NewApplication(uuid.New().String(), s.ID, o.ID, w.ID, snapshot, now)
	if err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}

	// The unique constraint is the authoritative duplicate guard: the
	// evaluator's check races with concurrent applies.
	if err := h.applicationRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("apply: failed to save application: %w", err)
	}

	event := shared.NewApplicationSubmittedEvent(a.ID, a.StudentID, a.OpeningID)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &ApplyResult{
		Eligible:      true,
		ApplicationID: a.ID,
		AppliedAt:     a.AppliedAt,
	}, nil
}

// openWindowFor returns the opening's currently open window, nil if none.
// When several windows overlap, the one that opened first wins.
func (h *ApplyHandler) openWindowFor(ctx context.Context, openingID string, now time.Time) (*opening.ApplicationWindow, error) {
	windows, err := h.windowRepo.GetByOpening(ctx, openingID)
	if err != nil {
		return nil, err
	}

	var open *opening.ApplicationWindow
	for _, w := range windows {
		if !w.IsOpenAt(now) {
			continue
		}
		if open == nil || w.OpensAt().Before(open.OpensAt()) {
			open = w
		}
	}
	return open, nil
}
