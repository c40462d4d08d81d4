package application

import (
	"time"
)

// ChangeKind classifies what a single review touched.
type ChangeKind string

const (
	// ChangeStatus - only the status moved.
	ChangeStatus ChangeKind = "status_change"
	// ChangeScore - only the score moved.
	ChangeScore ChangeKind = "score_update"
	// ChangeBoth - one review updated status and score together.
	ChangeBoth ChangeKind = "both"
)

// ReviewEntry is one immutable line of the review audit trail. Entries are
// append-only: nothing in the system updates or deletes them.
type ReviewEntry struct {
	// ID - internal unique identifier (UUID in string form).
	ID string

	// ApplicationID - the reviewed application.
	ApplicationID string

	// ReviewerID - who made the change.
	ReviewerID string

	// Kind - what the review touched.
	Kind ChangeKind

	// OldStatus, NewStatus - set when Kind is status_change or both.
	OldStatus Status
	NewStatus Status

	// OldScore, NewScore - set when Kind is score_update or both.
	// OldScore is nil when the score was assigned for the first time.
	OldScore *float64
	NewScore *float64

	// Comment - optional free-text reviewer note.
	Comment string

	// RecordedAt - when the change happened.
	RecordedAt time.Time
}

// ClassifyChange derives the change kind from what actually moved.
func ClassifyChange(statusChanged, scoreChanged bool) (ChangeKind, bool) {
	switch {
	case statusChanged && scoreChanged:
		return ChangeBoth, true
	case statusChanged:
		return ChangeStatus, true
	case scoreChanged:
		return ChangeScore, true
	default:
		return "", false
	}
}

// NewReviewEntry builds an audit entry for a completed review.
func NewReviewEntry(id, applicationID, reviewerID string, kind ChangeKind, now time.Time) *ReviewEntry {
	return &ReviewEntry{
		ID:            id,
		ApplicationID: applicationID,
		ReviewerID:    reviewerID,
		Kind:          kind,
		RecordedAt:    now.UTC(),
	}
}

// WithStatusChange fills the status columns.
func (e *ReviewEntry) WithStatusChange(old, next Status) *ReviewEntry {
	e.OldStatus = old
	e.NewStatus = next
	return e
}

// WithScoreChange fills the score columns.
func (e *ReviewEntry) WithScoreChange(old *float64, next float64) *ReviewEntry {
	if old != nil {
		v := *old
		e.OldScore = &v
	}
	e.NewScore = &next
	return e
}

// WithComment attaches a reviewer note.
func (e *ReviewEntry) WithComment(comment string) *ReviewEntry {
	e.Comment = comment
	return e
}
