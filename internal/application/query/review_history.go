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
// REVIEW HISTORY QUERY
// Returns an application's audit trail, most recent first.
// ══════════════════════════════════════════════════════════════════════════════

// ReviewHistoryQuery contains parameters for the history listing.
type ReviewHistoryQuery struct {
	// ApplicationID selects one application's trail.
	ApplicationID string

	// ReviewerID selects one reviewer's trail instead. Exactly one of the
	// two must be set.
	ReviewerID string

	// Limit caps the result for reviewer listings (default 50).
	Limit int
}

// Validate validates the query.
func (q *ReviewHistoryQuery) Validate() error {
	if (q.ApplicationID == "") == (q.ReviewerID == "") {
		return errors.New("exactly one of application_id and reviewer_id must be set")
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	return nil
}

// ReviewEntryDTO describes one audit entry.
type ReviewEntryDTO struct {
	// EntryID - internal entry ID.
	EntryID string `json:"entry_id"`

	// ApplicationID - the reviewed application.
	ApplicationID string `json:"application_id"`

	// ReviewerID - who made the change.
	ReviewerID string `json:"reviewer_id"`

	// Kind - status_change, score_update or both.
	Kind string `json:"kind"`

	// OldStatus and NewStatus are set for status changes.
	OldStatus string `json:"old_status,omitempty"`
	NewStatus string `json:"new_status,omitempty"`

	// OldScore and NewScore are set for score updates.
	OldScore *float64 `json:"old_score,omitempty"`
	NewScore *float64 `json:"new_score,omitempty"`

	// Comment - optional reviewer note.
	Comment string `json:"comment,omitempty"`

	// RecordedAt - when the change happened.
	RecordedAt time.Time `json:"recorded_at"`

	// RecordedAgo - human-readable relative time.
	RecordedAgo string `json:"recorded_ago"`
}

// ReviewHistoryResult contains the query result.
type ReviewHistoryResult struct {
	// Entries - audit entries, most recent first.
	Entries []ReviewEntryDTO `json:"entries"`

	// TotalCount - number of entries returned.
	TotalCount int `json:"total_count"`

	// GeneratedAt - evaluation instant.
	GeneratedAt time.Time `json:"generated_at"`
}

// ReviewHistoryHandler handles the review history query.
type ReviewHistoryHandler struct {
	historyRepo application.HistoryRepository
}

// NewReviewHistoryHandler creates a new ReviewHistoryHandler.
func NewReviewHistoryHandler(historyRepo application.HistoryRepository) *ReviewHistoryHandler {
	return &ReviewHistoryHandler{historyRepo: historyRepo}
}

// Handle executes the query.
func (h *ReviewHistoryHandler) Handle(ctx context.Context, query ReviewHistoryQuery) (*ReviewHistoryResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "ReviewHistory", shared.ErrValidation, err.Error(), err)
	}

	var (
		entries []*application.ReviewEntry
		err     error
	)
	if query.ApplicationID != "" {
		entries, err = h.historyRepo.ListByApplication(ctx, query.ApplicationID)
	} else {
		entries, err = h.historyRepo.ListByReviewer(ctx, query.ReviewerID, query.Limit)
	}
	if err != nil {
		return nil, shared.WrapError("query", "ReviewHistory", shared.ErrServiceUnavailable, "failed to load history", err)
	}

	dtos := make([]ReviewEntryDTO, 0, len(entries))
	for _, e := range entries {
		dto := ReviewEntryDTO{
			EntryID:       e.ID,
			ApplicationID: e.ApplicationID,
			ReviewerID:    e.ReviewerID,
			Kind:          string(e.Kind),
			OldStatus:     string(e.OldStatus),
			NewStatus:     string(e.NewStatus),
			OldScore:      e.OldScore,
			NewScore:      e.NewScore,
			Comment:       e.Comment,
			RecordedAt:    e.RecordedAt,
			RecordedAgo:   timeutil.FormatRelative(e.RecordedAt),
		}
		dtos = append(dtos, dto)
	}

	return &ReviewHistoryResult{
		Entries:     dtos,
		TotalCount:  len(dtos),
		GeneratedAt: timeutil.Now(),
	}, nil
}
