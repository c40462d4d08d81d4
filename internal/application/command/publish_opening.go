package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PUBLISH OPENING COMMAND
// Creates a recruitment opening with its default eligibility criteria.
// ══════════════════════════════════════════════════════════════════════════════

// CriteriaInput is the transport-level form of eligibility criteria.
// Nil fields and the empty branch list mean "unrestricted".
type CriteriaInput struct {
	MinCGPA     *float64
	MaxBacklogs *int
	Branches    []string
	PassingYear *int
}

func (c CriteriaInput) toDomain() opening.EligibilityCriteria {
	branches := make([]shared.Branch, 0, len(c.Branches))
	for _, b := range c.Branches {
		branches = append(branches, shared.Branch(b).Normalize())
	}
	return opening.EligibilityCriteria{
		MinCGPA:     c.MinCGPA,
		MaxBacklogs: c.MaxBacklogs,
		Branches:    branches,
		PassingYear: c.PassingYear,
	}
}

// PublishOpeningCommand contains the data needed to publish an opening.
type PublishOpeningCommand struct {
	Company     string
	Role        string
	Description string
	Deadline    time.Time
	Positions   int
	Criteria    CriteriaInput

	// CorrelationID for tracing across services.
	CorrelationID string
}

// Validate validates the command.
func (c PublishOpeningCommand) Validate() error {
	if c.Company == "" {
		return errors.New("publish_opening: company is required")
	}
	if c.Role == "" {
		return errors.New("publish_opening: role is required")
	}
	if c.Deadline.IsZero() {
		return errors.New("publish_opening: deadline is required")
	}
	return nil
}

// PublishOpeningResult contains the result of publishing.
type PublishOpeningResult struct {
	// OpeningID is the internal ID of the created opening.
	OpeningID string

	// PublishedAt is when the opening was created.
	PublishedAt time.Time
}

// PublishOpeningHandler handles the PublishOpeningCommand.
type PublishOpeningHandler struct {
	openingRepo    opening.Repository
	eventPublisher shared.EventPublisher
}

// NewPublishOpeningHandler creates a new PublishOpeningHandler.
func NewPublishOpeningHandler(
	openingRepo opening.Repository,
	eventPublisher shared.EventPublisher,
) *PublishOpeningHandler {
	return &PublishOpeningHandler{
		openingRepo:    openingRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the publish opening command.
func (h *PublishOpeningHandler) Handle(ctx context.Context, cmd PublishOpeningCommand) (*PublishOpeningResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("publish_opening: validation failed: %w", err)
	}

	now := timeutil.Now()
	o, err := opening.NewOpening(opening.NewOpeningParams{
		ID:              uuid.New().String(),
		Company:         cmd.Company,
		Role:            cmd.Role,
		Description:     cmd.Description,
		Deadline:        cmd.Deadline,
		Positions:       cmd.Positions,
		DefaultCriteria: cmd.Criteria.toDomain(),
	}, now)
	if err != nil {
		return nil, fmt.Errorf("publish_opening: %w", err)
	}

	if err := h.openingRepo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("publish_opening: failed to save opening: %w", err)
	}

	event := shared.NewOpeningPublishedEvent(o.ID, o.Company, o.Role, o.Deadline, o.Positions)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &PublishOpeningResult{
		OpeningID:   o.ID,
		PublishedAt: o.CreatedAt,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// OPEN WINDOW COMMAND
// Attaches a time-boxed application window to an opening.
// ══════════════════════════════════════════════════════════════════════════════

// OpenWindowCommand contains the data needed to create an application window.
type OpenWindowCommand struct {
	OpeningID string

	// StartDate and EndDate are calendar dates (time part ignored).
	StartDate time.Time
	EndDate   time.Time

	// StartTime and EndTime are "HH:MM" in campus local time.
	StartTime string
	EndTime   string

	// Criteria overrides; unset dimensions inherit the opening defaults.
	Criteria CriteriaInput

	// CorrelationID for tracing across services.
	CorrelationID string
}

// Validate validates the command.
func (c OpenWindowCommand) Validate() error {
	if c.OpeningID == "" {
		return errors.New("open_window: opening_id is required")
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return errors.New("open_window: start and end dates are required")
	}
	return nil
}

// OpenWindowResult contains the result of window creation.
type OpenWindowResult struct {
	// WindowID is the internal ID of the created window.
	WindowID string

	// OpensAt and ClosesAt are the resolved boundary instants.
	OpensAt  time.Time
	ClosesAt time.Time
}

// OpenWindowHandler handles the OpenWindowCommand.
type OpenWindowHandler struct {
	openingRepo    opening.Repository
	windowRepo     opening.WindowRepository
	windowCache    opening.WindowCache
	eventPublisher shared.EventPublisher
}

// NewOpenWindowHandler creates a new OpenWindowHandler.
func NewOpenWindowHandler(
	openingRepo opening.Repository,
	windowRepo opening.WindowRepository,
	windowCache opening.WindowCache,
	eventPublisher shared.EventPublisher,
) *OpenWindowHandler {
	return &OpenWindowHandler{
		openingRepo:    openingRepo,
		windowRepo:     windowRepo,
		windowCache:    windowCache,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the open window command.
func (h *OpenWindowHandler) Handle(ctx context.Context, cmd OpenWindowCommand) (*OpenWindowResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("open_window: validation failed: %w", err)
	}

	startHour, startMin, err := timeutil.ParseTimeOfDay(cmd.StartTime)
	if err != nil {
		return nil, fmt.Errorf("open_window: invalid start time: %w", err)
	}
	endHour, endMin, err := timeutil.ParseTimeOfDay(cmd.EndTime)
	if err != nil {
		return nil, fmt.Errorf("open_window: invalid end time: %w", err)
	}
	startTime, err := shared.NewTimeOfDay(startHour, startMin)
	if err != nil {
		return nil, fmt.Errorf("open_window: invalid start time: %w", err)
	}
	endTime, err := shared.NewTimeOfDay(endHour, endMin)
	if err != nil {
		return nil, fmt.Errorf("open_window: invalid end time: %w", err)
	}

	o, err := h.openingRepo.GetByID(ctx, cmd.OpeningID)
	if err != nil {
		return nil, fmt.Errorf("open_window: failed to load opening: %w", err)
	}
	if o.Status != opening.StatusActive {
		return nil, shared.ErrOpeningInactive
	}

	now := timeutil.Now()
	w, err := opening.NewWindow(opening.NewWindowParams{
		ID:        uuid.New().String(),
		OpeningID: o.ID,
		StartDate: cmd.StartDate,
		StartTime: startTime,
		EndDate:   cmd.EndDate,
		EndTime:   endTime,
		Criteria:  cmd.Criteria.toDomain(),
	}, o, now)
	if err != nil {
		return nil, fmt.Errorf("open_window: %w", err)
	}

	if err := h.windowRepo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("open_window: failed to save window: %w", err)
	}

	// New window may change the open set immediately.
	if h.windowCache != nil {
		_ = h.windowCache.Invalidate(ctx, w.ID)
	}

	event := shared.NewWindowOpenedEvent(w.ID, o.ID, w.OpensAt(), w.ClosesAt())
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &OpenWindowResult{
		WindowID: w.ID,
		OpensAt:  w.OpensAt(),
		ClosesAt: w.ClosesAt(),
	}, nil
}
