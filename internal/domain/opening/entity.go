// Package opening contains the recruitment opening domain model: a company's
// hiring campaign, its default eligibility criteria, and the time-boxed
// application windows scoped to it.
package opening

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status defines the lifecycle status of a recruitment opening.
type Status string

const (
	// StatusActive - the opening accepts applications (subject to windows).
	StatusActive Status = "active"
	// StatusInactive - the opening is paused and accepts no applications.
	StatusInactive Status = "inactive"
	// StatusCompleted - the campaign finished; the record is kept for history.
	StatusCompleted Status = "completed"
)

// IsValid checks that the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusCompleted:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ELIGIBILITY CRITERIA
// ══════════════════════════════════════════════════════════════════════════════

// EligibilityCriteria is the set of academic requirements a student must meet.
// Every field is optional: a nil pointer (or empty branch list) means the
// dimension is unrestricted. An opening carries default criteria; each window
// carries its own copy, inheriting any dimension it leaves unset.
type EligibilityCriteria struct {
	// MinCGPA - minimum grade average on the 0-10 scale.
	MinCGPA *float64

	// MaxBacklogs - maximum number of outstanding failed courses.
	// Zero is a meaningful restriction ("no backlogs"), hence the pointer.
	MaxBacklogs *int

	// Branches - eligible branch codes. Empty means no branch restriction.
	Branches []shared.Branch

	// PassingYear - required graduation batch year.
	PassingYear *int
}

// Validate checks that any set dimension is in range.
func (c EligibilityCriteria) Validate() error {
	if c.MinCGPA != nil && (*c.MinCGPA < 0 || *c.MinCGPA > 10) {
		return shared.NewDomainError("opening", "Validate", shared.ErrValueOutOfRange, "minimum CGPA must be between 0 and 10")
	}
	if c.MaxBacklogs != nil && *c.MaxBacklogs < 0 {
		return shared.NewDomainError("opening", "Validate", shared.ErrValueOutOfRange, "maximum backlogs cannot be negative")
	}
	for _, b := range c.Branches {
		if !b.Normalize().IsValid() {
			return shared.NewDomainError("opening", "Validate", shared.ErrInvalidInput, fmt.Sprintf("invalid branch %q", b))
		}
	}
	return nil
}

// MergeDefaults fills every unset dimension from the given defaults.
// Used when a window does not override the opening's criteria.
func (c EligibilityCriteria) MergeDefaults(defaults EligibilityCriteria) EligibilityCriteria {
	merged := c
	if merged.MinCGPA == nil {
		merged.MinCGPA = defaults.MinCGPA
	}
	if merged.MaxBacklogs == nil {
		merged.MaxBacklogs = defaults.MaxBacklogs
	}
	if len(merged.Branches) == 0 {
		merged.Branches = defaults.Branches
	}
	if merged.PassingYear == nil {
		merged.PassingYear = defaults.PassingYear
	}
	return merged
}

// AllowsBranch reports whether the branch passes the branch restriction.
func (c EligibilityCriteria) AllowsBranch(b shared.Branch) bool {
	if len(c.Branches) == 0 {
		return true
	}
	norm := b.Normalize()
	for _, allowed := range c.Branches {
		if allowed.Normalize() == norm {
			return true
		}
	}
	return false
}

// MatchesAcademics reports whether a student's academic profile satisfies
// every set dimension. The window-open and already-applied checks live in
// the eligibility evaluator, not here.
func (c EligibilityCriteria) MatchesAcademics(s *student.Student) bool {
	if c.MinCGPA != nil && s.CGPA.Float64() < *c.MinCGPA {
		return false
	}
	if c.MaxBacklogs != nil && s.Backlogs > *c.MaxBacklogs {
		return false
	}
	if !c.AllowsBranch(s.Branch) {
		return false
	}
	if c.PassingYear != nil && s.BatchYear.Int() != *c.PassingYear {
		return false
	}
	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: OPENING
// ══════════════════════════════════════════════════════════════════════════════

// Opening is a company's recruitment campaign.
type Opening struct {
	// ID - internal unique identifier (UUID in string form).
	ID string

	// Company - hiring company name.
	Company string

	// Role - position title being hired for.
	Role string

	// Description - free-text description shown to students.
	Description string

	// Status - lifecycle status.
	Status Status

	// Deadline - last instant applications are accepted, regardless of windows.
	Deadline time.Time

	// Positions - total number of positions on offer.
	Positions int

	// DefaultCriteria - eligibility defaults inherited by windows that do not
	// override them.
	DefaultCriteria EligibilityCriteria

	// CreatedAt - record creation time.
	CreatedAt time.Time

	// UpdatedAt - last update time.
	UpdatedAt time.Time
}

// Domain errors specific to opening construction.
var (
	ErrInvalidCompany   = errors.New("invalid company: must be 1-200 chars")
	ErrInvalidPositions = errors.New("invalid positions: must be positive")
	ErrInvalidDeadline  = errors.New("invalid deadline: must be in the future")
)

// NewOpeningParams contains parameters for creating a new opening.
type NewOpeningParams struct {
	ID              string
	Company         string
	Role            string
	Description     string
	Deadline        time.Time
	Positions       int
	DefaultCriteria EligibilityCriteria
}

// NewOpening creates a new active opening with validation.
func NewOpening(params NewOpeningParams, now time.Time) (*Opening, error) {
	if params.ID == "" {
		return nil, errors.New("opening id is required")
	}

	company := strings.TrimSpace(params.Company)
	if len(company) == 0 || len(company) > 200 {
		return nil, ErrInvalidCompany
	}

	if params.Positions <= 0 {
		return nil, ErrInvalidPositions
	}

	if !params.Deadline.After(now) {
		return nil, ErrInvalidDeadline
	}

	if err := params.DefaultCriteria.Validate(); err != nil {
		return nil, err
	}

	return &Opening{
		ID:              params.ID,
		Company:         company,
		Role:            strings.TrimSpace(params.Role),
		Description:     strings.TrimSpace(params.Description),
		Status:          StatusActive,
		Deadline:        params.Deadline,
		Positions:       params.Positions,
		DefaultCriteria: params.DefaultCriteria,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}, nil
}

// IsAcceptingApplications reports whether a new application may be created
// right now: the opening must be active and the deadline not passed.
// Window-level gating is checked separately by the evaluator.
func (o *Opening) IsAcceptingApplications(now time.Time) error {
	if o.Status != StatusActive {
		return shared.ErrOpeningInactive
	}
	if now.After(o.Deadline) {
		return shared.ErrDeadlinePassed
	}
	return nil
}

// Deactivate pauses the opening.
func (o *Opening) Deactivate() error {
	if o.Status == StatusCompleted {
		return shared.ErrOpeningInactive
	}
	o.Status = StatusInactive
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// Reactivate resumes a paused opening.
func (o *Opening) Reactivate() error {
	if o.Status != StatusInactive {
		return shared.ErrOpeningInactive
	}
	o.Status = StatusActive
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkCompleted closes the campaign for good.
func (o *Opening) MarkCompleted() {
	o.Status = StatusCompleted
	o.UpdatedAt = time.Now().UTC()
}

// String returns a loggable representation of the opening.
func (o *Opening) String() string {
	return fmt.Sprintf("Opening{ID: %s, Company: %s, Role: %s, Status: %s}", o.ID, o.Company, o.Role, o.Status)
}
