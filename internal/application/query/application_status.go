package query

import (
	"context"
	"errors"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/application"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION STATUS QUERY
// Returns the current state of one application, either by its ID or by the
// (student, opening) pair a student would naturally know.
// ══════════════════════════════════════════════════════════════════════════════

// ApplicationStatusQuery contains parameters for the status lookup.
type ApplicationStatusQuery struct {
	// ApplicationID looks the application up directly.
	ApplicationID string

	// StudentID and OpeningID look it up by pair when ApplicationID is empty.
	StudentID string
	OpeningID string
}

// Validate validates the query parameters.
func (q *ApplicationStatusQuery) Validate() error {
	if q.ApplicationID != "" {
		return nil
	}
	if q.StudentID == "" || q.OpeningID == "" {
		return errors.New("application_status: application_id or (student_id, opening_id) is required")
	}
	return nil
}

// ApplicationDTO describes an application for API consumers.
type ApplicationDTO struct {
	ApplicationID string   `json:"application_id"`
	StudentID     string   `json:"student_id"`
	OpeningID     string   `json:"opening_id"`
	WindowID      string   `json:"window_id,omitempty"`
	Status        string   `json:"status"`
	Terminal      bool     `json:"terminal"`
	Score         *float64 `json:"score,omitempty"`
	RoundNumber   int      `json:"round_number"`

	// Snapshot is the academic profile frozen at submission time.
	Snapshot application.FormSnapshot `json:"snapshot"`

	AppliedAt time.Time `json:"applied_at"`
	UpdatedAt time.Time `json:"updated_at"`
	AppliedAgo string   `json:"applied_ago"`
}

// ApplicationStatusResult contains the query result.
type ApplicationStatusResult struct {
	Application ApplicationDTO `json:"application"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// ApplicationStatusHandler handles application status lookups.
type ApplicationStatusHandler struct {
	applicationRepo application.Repository
}

// NewApplicationStatusHandler creates a new ApplicationStatusHandler.
func NewApplicationStatusHandler(applicationRepo application.Repository) *ApplicationStatusHandler {
	return &ApplicationStatusHandler{applicationRepo: applicationRepo}
}

// Handle executes the query.
func (h *ApplicationStatusHandler) Handle(ctx context.Context, q ApplicationStatusQuery) (*ApplicationStatusResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("query", "ApplicationStatus", shared.ErrValidation, err.Error(), err)
	}

	var (
		a   *application.Application
		err error
	)
	if q.ApplicationID != "" {
		a, err = h.applicationRepo.GetByID(ctx, q.ApplicationID)
	} else {
		a, err = h.applicationRepo.GetByStudentAndOpening(ctx, q.StudentID, q.OpeningID)
	}
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, shared.WrapError("query", "ApplicationStatus", shared.ErrServiceUnavailable, "failed to load application", err)
	}

	return &ApplicationStatusResult{
		Application: toApplicationDTO(a),
		GeneratedAt: timeutil.Now(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// OPENING APPLICATIONS QUERY
// Lists applications for one opening, for reviewer dashboards.
// ══════════════════════════════════════════════════════════════════════════════

// OpeningApplicationsQuery contains parameters for the listing.
type OpeningApplicationsQuery struct {
	OpeningID string

	// Status filters by current status (empty = all).
	Status string

	// Offset and Limit page through the results.
	Offset int
	Limit  int
}

// Validate normalizes the query parameters.
func (q *OpeningApplicationsQuery) Validate() error {
	if q.OpeningID == "" {
		return errors.New("opening_applications: opening_id is required")
	}
	if q.Status != "" && !application.Status(q.Status).IsValid() {
		return errors.New("opening_applications: unknown status filter")
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return nil
}

// OpeningApplicationsResult contains the query result.
type OpeningApplicationsResult struct {
	OpeningID    string           `json:"opening_id"`
	Applications []ApplicationDTO `json:"applications"`
	Total        int64            `json:"total"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// OpeningApplicationsHandler handles application listings per opening.
type OpeningApplicationsHandler struct {
	applicationRepo application.Repository
}

// NewOpeningApplicationsHandler creates a new OpeningApplicationsHandler.
func NewOpeningApplicationsHandler(applicationRepo application.Repository) *OpeningApplicationsHandler {
	return &OpeningApplicationsHandler{applicationRepo: applicationRepo}
}

// Handle executes the listing.
func (h *OpeningApplicationsHandler) Handle(ctx context.Context, q OpeningApplicationsQuery) (*OpeningApplicationsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("query", "OpeningApplications", shared.ErrValidation, err.Error(), err)
	}

	opts := application.ListOptions{
		Offset: q.Offset,
		Limit:  q.Limit,
		Status: application.Status(q.Status),
	}

	apps, err := h.applicationRepo.GetByOpening(ctx, q.OpeningID, opts)
	if err != nil {
		return nil, shared.WrapError("query", "OpeningApplications", shared.ErrServiceUnavailable, "failed to load applications", err)
	}

	total, err := h.applicationRepo.CountByOpening(ctx, q.OpeningID, application.ListOptions{Status: opts.Status})
	if err != nil {
		return nil, shared.WrapError("query", "OpeningApplications", shared.ErrServiceUnavailable, "failed to count applications", err)
	}

	dtos := make([]ApplicationDTO, 0, len(apps))
	for _, a := range apps {
		dtos = append(dtos, toApplicationDTO(a))
	}

	return &OpeningApplicationsResult{
		OpeningID:    q.OpeningID,
		Applications: dtos,
		Total:        total,
		GeneratedAt:  timeutil.Now(),
	}, nil
}

// toApplicationDTO maps a domain application to its API shape.
func toApplicationDTO(a *application.Application) ApplicationDTO {
	return ApplicationDTO{
		ApplicationID: a.ID,
		StudentID:     a.StudentID,
		OpeningID:     a.OpeningID,
		WindowID:      a.WindowID,
		Status:        string(a.Status),
		Terminal:      a.Status.IsTerminal(),
		Score:         a.Score,
		RoundNumber:   a.RoundNumber,
		Snapshot:      a.FormSnapshot,
		AppliedAt:     a.AppliedAt,
		UpdatedAt:     a.UpdatedAt,
		AppliedAgo:    timeutil.FormatRelative(a.AppliedAt),
	}
}
