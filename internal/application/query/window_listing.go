// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"sort"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// OPEN WINDOWS QUERY
// Lists application windows that are currently open, soonest-closing first.
// The open set changes only at window boundaries, so it is cached briefly.
// ══════════════════════════════════════════════════════════════════════════════

// OpenWindowsQuery contains parameters for the open windows listing.
type OpenWindowsQuery struct {
	// OpeningID filters to one opening (empty = all openings).
	OpeningID string

	// Limit is the maximum number of windows (default 50).
	Limit int
}

// Validate normalizes the query parameters.
func (q *OpenWindowsQuery) Validate() error {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
	return nil
}

// OpenWindowDTO describes one currently open window.
type OpenWindowDTO struct {
	// WindowID - internal window ID.
	WindowID string `json:"window_id"`

	// OpeningID - the opening the window belongs to.
	OpeningID string `json:"opening_id"`

	// Company and Role identify the opening for display.
	Company string `json:"company"`
	Role    string `json:"role"`

	// OpensAt and ClosesAt are the boundary instants in campus time.
	OpensAt  time.Time `json:"opens_at"`
	ClosesAt time.Time `json:"closes_at"`

	// ClosesIn is a human-readable countdown.
	ClosesIn string `json:"closes_in"`

	// MinCGPA is the window's CGPA bar, nil when unrestricted.
	MinCGPA *float64 `json:"min_cgpa,omitempty"`

	// Branches lists the eligible branches, empty when unrestricted.
	Branches []string `json:"branches,omitempty"`
}

// OpenWindowsResult contains the query result.
type OpenWindowsResult struct {
	// Windows - currently open windows, soonest-closing first.
	Windows []OpenWindowDTO `json:"windows"`

	// TotalOpen - total open windows before the limit.
	TotalOpen int `json:"total_open"`

	// FromCache - true when served from the cache.
	FromCache bool `json:"from_cache"`

	// GeneratedAt - evaluation instant.
	GeneratedAt time.Time `json:"generated_at"`
}

// OpenWindowsHandler handles the open windows query.
type OpenWindowsHandler struct {
	windowRepo  opening.WindowRepository
	openingRepo opening.Repository
	windowCache opening.WindowCache
	cacheTTL    time.Duration
}

// NewOpenWindowsHandler creates a new OpenWindowsHandler.
func NewOpenWindowsHandler(
	windowRepo opening.WindowRepository,
	openingRepo opening.Repository,
	windowCache opening.WindowCache,
	cacheTTL time.Duration,
) *OpenWindowsHandler {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &OpenWindowsHandler{
		windowRepo:  windowRepo,
		openingRepo: openingRepo,
		windowCache: windowCache,
		cacheTTL:    cacheTTL,
	}
}

// Handle executes the query.
func (h *OpenWindowsHandler) Handle(ctx context.Context, query OpenWindowsQuery) (*OpenWindowsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "OpenWindows", shared.ErrValidation, err.Error(), err)
	}

	now := timeutil.Now()

	open, fromCache, err := h.loadOpen(ctx, now)
	if err != nil {
		return nil, shared.WrapError("query", "OpenWindows", shared.ErrServiceUnavailable, "failed to load windows", err)
	}

	dtos := make([]OpenWindowDTO, 0, len(open))
	for _, w := range open {
		if query.OpeningID != "" && w.OpeningID != query.OpeningID {
			continue
		}

		o, err := h.openingRepo.GetByID(ctx, w.OpeningID)
		if err != nil {
			// Window without a loadable opening is skipped, not fatal.
			continue
		}

		branches := make([]string, 0, len(w.Criteria.Branches))
		for _, b := range w.Criteria.Branches {
			branches = append(branches, b.String())
		}

		dtos = append(dtos, OpenWindowDTO{
			WindowID:  w.ID,
			OpeningID: w.OpeningID,
			Company:   o.Company,
			Role:      o.Role,
			OpensAt:   w.OpensAt(),
			ClosesAt:  w.ClosesAt(),
			ClosesIn:  timeutil.FormatRelative(w.ClosesAt()),
			MinCGPA:   w.Criteria.MinCGPA,
			Branches:  branches,
		})
	}

	sort.Slice(dtos, func(i, j int) bool {
		return dtos[i].ClosesAt.Before(dtos[j].ClosesAt)
	})

	total := len(dtos)
	if len(dtos) > query.Limit {
		dtos = dtos[:query.Limit]
	}

	return &OpenWindowsResult{
		Windows:     dtos,
		TotalOpen:   total,
		FromCache:   fromCache,
		GeneratedAt: now,
	}, nil
}

// loadOpen returns the open windows, trying the cached ID set first.
func (h *OpenWindowsHandler) loadOpen(ctx context.Context, now time.Time) ([]*opening.ApplicationWindow, bool, error) {
	if h.windowCache == nil {
		return h.loadOpenFresh(ctx, now)
	}
	if ids, ok, err := h.windowCache.GetOpenWindows(ctx); err == nil && ok {
		windows := make([]*opening.ApplicationWindow, 0, len(ids))
		for _, id := range ids {
			w, err := h.windowRepo.GetByID(ctx, id)
			if err != nil {
				continue
			}
			// Re-check: the cached set may be a minute stale.
			if w.IsOpenAt(now) {
				windows = append(windows, w)
			}
		}
		return windows, true, nil
	}

	return h.loadOpenFresh(ctx, now)
}

// loadOpenFresh evaluates the open set against the repository.
func (h *OpenWindowsHandler) loadOpenFresh(ctx context.Context, now time.Time) ([]*opening.ApplicationWindow, bool, error) {
	active, err := h.windowRepo.GetActive(ctx)
	if err != nil {
		return nil, false, err
	}

	open := make([]*opening.ApplicationWindow, 0, len(active))
	ids := make([]string, 0, len(active))
	for _, w := range active {
		if w.IsOpenAt(now) {
			open = append(open, w)
			ids = append(ids, w.ID)
		}
	}

	if h.windowCache != nil {
		_ = h.windowCache.SetOpenWindows(ctx, ids, h.cacheTTL)
	}
	return open, false, nil
}
