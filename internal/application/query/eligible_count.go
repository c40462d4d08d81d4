package query

import (
	"context"
	"errors"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/eligibility"
	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/internal/domain/student"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ELIGIBLE COUNT QUERY
// Forecasts how many students would pass a window's criteria. Runs the
// evaluator over the whole student roster, so the count is cached.
// ══════════════════════════════════════════════════════════════════════════════

// EligibleCountQuery contains parameters for the eligible count.
type EligibleCountQuery struct {
	WindowID string

	// SkipCache forces a fresh sweep.
	SkipCache bool
}

// Validate validates the query.
func (q *EligibleCountQuery) Validate() error {
	if q.WindowID == "" {
		return errors.New("window_id is required")
	}
	return nil
}

// EligibleCountResult contains the query result.
type EligibleCountResult struct {
	// WindowID - the evaluated window.
	WindowID string `json:"window_id"`

	// EligibleCount - students passing every criteria dimension.
	EligibleCount int64 `json:"eligible_count"`

	// TotalStudents - roster size the sweep evaluated.
	TotalStudents int64 `json:"total_students"`

	// FromCache - true when served from the cache.
	FromCache bool `json:"from_cache"`

	// GeneratedAt - evaluation instant.
	GeneratedAt time.Time `json:"generated_at"`
}

// EligibleCountHandler handles the eligible count query.
type EligibleCountHandler struct {
	windowRepo  opening.WindowRepository
	studentRepo student.Repository
	windowCache opening.WindowCache
	cacheTTL    time.Duration
}

// NewEligibleCountHandler creates a new EligibleCountHandler.
func NewEligibleCountHandler(
	windowRepo opening.WindowRepository,
	studentRepo student.Repository,
	windowCache opening.WindowCache,
	cacheTTL time.Duration,
) *EligibleCountHandler {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &EligibleCountHandler{
		windowRepo:  windowRepo,
		studentRepo: studentRepo,
		windowCache: windowCache,
		cacheTTL:    cacheTTL,
	}
}

// Handle executes the query.
func (h *EligibleCountHandler) Handle(ctx context.Context, query EligibleCountQuery) (*EligibleCountResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "EligibleCount", shared.ErrValidation, err.Error(), err)
	}

	now := timeutil.Now()

	if !query.SkipCache && h.windowCache != nil {
		if count, ok, err := h.windowCache.GetEligibleCount(ctx, query.WindowID); err == nil && ok {
			return &EligibleCountResult{
				WindowID:      query.WindowID,
				EligibleCount: count,
				FromCache:     true,
				GeneratedAt:   now,
			}, nil
		}
	}

	w, err := h.windowRepo.GetByID(ctx, query.WindowID)
	if err != nil {
		return nil, err
	}

	// Unplaced students only: a placed student is denied anyway.
	opts := student.DefaultListOptions().WithoutPlaced().WithLimit(0)
	roster, err := h.studentRepo.GetAll(ctx, opts)
	if err != nil {
		return nil, shared.WrapError("query", "EligibleCount", shared.ErrServiceUnavailable, "failed to load students", err)
	}

	var count int64
	for _, s := range roster {
		if eligibility.Forecast(s, w, now).Eligible {
			count++
		}
	}

	if h.windowCache != nil {
		_ = h.windowCache.SetEligibleCount(ctx, w.ID, count, h.cacheTTL)
	}

	return &EligibleCountResult{
		WindowID:      w.ID,
		EligibleCount: count,
		TotalStudents: int64(len(roster)),
		FromCache:     false,
		GeneratedAt:   now,
	}, nil
}
