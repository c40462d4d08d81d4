package opening

import (
	"fmt"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

// ApplicationWindow is a time-boxed period during which an opening accepts
// applications. The bounds are stored as a calendar date plus a time of day
// and interpreted in campus local time: the window opens at StartDate+StartTime
// and closes at EndDate+EndTime.
type ApplicationWindow struct {
	// ID - internal unique identifier (UUID in string form).
	ID string

	// OpeningID - the opening this window belongs to.
	OpeningID string

	// StartDate - calendar date the window opens (date part only).
	StartDate time.Time

	// StartTime - time of day the window opens.
	StartTime shared.TimeOfDay

	// EndDate - calendar date the window closes (date part only).
	EndDate time.Time

	// EndTime - time of day the window closes.
	EndTime shared.TimeOfDay

	// Criteria - eligibility criteria effective for this window, already
	// merged with the opening defaults at creation time.
	Criteria EligibilityCriteria

	// Active - manual kill switch. An inactive window is never open.
	Active bool

	// CreatedAt - record creation time.
	CreatedAt time.Time

	// UpdatedAt - last update time.
	UpdatedAt time.Time
}

// NewWindowParams contains parameters for creating an application window.
type NewWindowParams struct {
	ID        string
	OpeningID string
	StartDate time.Time
	StartTime shared.TimeOfDay
	EndDate   time.Time
	EndTime   shared.TimeOfDay
	Criteria  EligibilityCriteria
}

// NewWindow creates a window with validation. The criteria are merged with
// the opening's defaults so the stored record is self-contained.
func NewWindow(params NewWindowParams, o *Opening, now time.Time) (*ApplicationWindow, error) {
	if params.ID == "" {
		return nil, shared.NewDomainError("window", "Create", shared.ErrInvalidInput, "window id is required")
	}
	if o == nil || params.OpeningID != o.ID {
		return nil, shared.ErrOpeningNotFound
	}
	if !params.StartTime.IsValid() || !params.EndTime.IsValid() {
		return nil, shared.NewDomainError("window", "Create", shared.ErrInvalidInput, "invalid time of day")
	}

	w := &ApplicationWindow{
		ID:        params.ID,
		OpeningID: params.OpeningID,
		StartDate: timeutil.StartOfDay(params.StartDate),
		StartTime: params.StartTime,
		EndDate:   timeutil.StartOfDay(params.EndDate),
		EndTime:   params.EndTime,
		Criteria:  params.Criteria.MergeDefaults(o.DefaultCriteria),
		Active:    true,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}
	if err := w.Criteria.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// OpensAt returns the exact instant the window opens, in campus time.
func (w *ApplicationWindow) OpensAt() time.Time {
	return timeutil.Combine(w.StartDate, w.StartTime.Hour, w.StartTime.Minute)
}

// ClosesAt returns the exact instant the window closes, in campus time.
func (w *ApplicationWindow) ClosesAt() time.Time {
	return timeutil.Combine(w.EndDate, w.EndTime.Hour, w.EndTime.Minute)
}

// Validate checks that the window opens strictly before it closes.
func (w *ApplicationWindow) Validate() error {
	if !w.OpensAt().Before(w.ClosesAt()) {
		return shared.ErrInvalidWindowRange
	}
	return nil
}

// IsOpenAt reports whether the window is open at the given instant.
// Both boundary instants count as open.
func (w *ApplicationWindow) IsOpenAt(t time.Time) bool {
	if !w.Active {
		return false
	}
	return !t.Before(w.OpensAt()) && !t.After(w.ClosesAt())
}

// IsUpcomingAt reports whether the window has not opened yet.
func (w *ApplicationWindow) IsUpcomingAt(t time.Time) bool {
	return w.Active && t.Before(w.OpensAt())
}

// Deactivate switches the window off regardless of its schedule.
func (w *ApplicationWindow) Deactivate() {
	w.Active = false
	w.UpdatedAt = time.Now().UTC()
}

// String returns a loggable representation of the window.
func (w *ApplicationWindow) String() string {
	return fmt.Sprintf("Window{ID: %s, Opening: %s, %s %s - %s %s}",
		w.ID, w.OpeningID,
		w.StartDate.Format(timeutil.FormatDate), w.StartTime,
		w.EndDate.Format(timeutil.FormatDate), w.EndTime)
}
