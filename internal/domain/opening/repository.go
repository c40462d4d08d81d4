package opening

import (
	"context"
	"time"
)

// Repository defines the data access contract for openings.
type Repository interface {
	// Create persists a new opening.
	Create(ctx context.Context, o *Opening) error

	// GetByID returns an opening by its identifier.
	// Returns shared.ErrOpeningNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*Opening, error)

	// Update persists changes to an existing opening.
	Update(ctx context.Context, o *Opening) error

	// GetAll returns openings filtered by the given options.
	GetAll(ctx context.Context, opts ListOptions) ([]*Opening, error)

	// GetActivePastDeadline returns active openings whose deadline is before
	// the given instant. Used by the maintenance job that completes them.
	GetActivePastDeadline(ctx context.Context, before time.Time) ([]*Opening, error)

	// Count returns the number of openings matching the options.
	Count(ctx context.Context, opts ListOptions) (int64, error)
}

// WindowRepository defines the data access contract for application windows.
type WindowRepository interface {
	// Create persists a new window.
	Create(ctx context.Context, w *ApplicationWindow) error

	// GetByID returns a window by its identifier.
	// Returns shared.ErrWindowNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*ApplicationWindow, error)

	// Update persists changes to an existing window.
	Update(ctx context.Context, w *ApplicationWindow) error

	// GetByOpening returns all windows of an opening, earliest first.
	GetByOpening(ctx context.Context, openingID string) ([]*ApplicationWindow, error)

	// GetActive returns all active windows regardless of schedule.
	// The caller filters by IsOpenAt; the schedule lives in local-time
	// date + time-of-day columns that SQL cannot compare cheaply.
	GetActive(ctx context.Context) ([]*ApplicationWindow, error)
}

// ListOptions defines pagination and filtering for opening queries.
type ListOptions struct {
	Offset     int
	Limit      int
	Status     Status // empty means any status
	Company    string // empty means any company
	SortByDate bool   // sort by deadline instead of creation time
}

// DefaultListOptions returns sensible list options.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: 100}
}

// WindowCache defines caching for computed window state.
type WindowCache interface {
	// GetOpenWindows returns the cached list of currently open window IDs.
	GetOpenWindows(ctx context.Context) ([]string, bool, error)

	// SetOpenWindows caches the list of currently open window IDs.
	SetOpenWindows(ctx context.Context, ids []string, ttl time.Duration) error

	// GetEligibleCount returns the cached eligible-student count for a window.
	GetEligibleCount(ctx context.Context, windowID string) (int64, bool, error)

	// SetEligibleCount caches the eligible-student count for a window.
	SetEligibleCount(ctx context.Context, windowID string, count int64, ttl time.Duration) error

	// Invalidate drops all cached state for a window.
	Invalidate(ctx context.Context, windowID string) error
}
