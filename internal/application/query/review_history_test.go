package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/campus-placement-hub/internal/domain/application"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
)

func seedEntry(t *testing.T, repo *fakeHistoryRepo, id, appID, reviewerID string, kind application.ChangeKind, at time.Time) {
	e := application.NewReviewEntry(id, appID, reviewerID, kind, at)
	switch kind {
	case application.ChangeStatus:
		e.WithStatusChange(application.StatusSubmitted, application.StatusUnderReview)
	case application.ChangeScore:
		e.WithScoreChange(nil, 7.5)
	case application.ChangeBoth:
		e.WithStatusChange(application.StatusUnderReview, application.StatusShortlisted)
		e.WithScoreChange(fptr(7.5), 8.5)
	}
	assert.NoError(t, repo.Append(context.Background(), e))
}

func TestReviewHistoryByApplication(t *testing.T) {
	repo := &fakeHistoryRepo{}
	handler := NewReviewHistoryHandler(repo)

	base := time.Now().Add(-time.Hour)
	seedEntry(t, repo, "e-1", "app-1", "rev-1", application.ChangeStatus, base)
	seedEntry(t, repo, "e-2", "app-1", "rev-2", application.ChangeScore, base.Add(10*time.Minute))
	seedEntry(t, repo, "e-3", "app-other", "rev-1", application.ChangeStatus, base.Add(20*time.Minute))
	seedEntry(t, repo, "e-4", "app-1", "rev-1", application.ChangeBoth, base.Add(30*time.Minute))

	result, err := handler.Handle(context.Background(), ReviewHistoryQuery{ApplicationID: "app-1"})

	assert.NoError(t, err)
	assert.Equal(t, 3, result.TotalCount)

	// Most recent first.
	assert.Equal(t, "e-4", result.Entries[0].EntryID)
	assert.Equal(t, "e-2", result.Entries[1].EntryID)
	assert.Equal(t, "e-1", result.Entries[2].EntryID)
}

func TestReviewHistoryChangeFields(t *testing.T) {
	repo := &fakeHistoryRepo{}
	handler := NewReviewHistoryHandler(repo)

	seedEntry(t, repo, "e-1", "app-1", "rev-1", application.ChangeBoth, time.Now())

	result, err := handler.Handle(context.Background(), ReviewHistoryQuery{ApplicationID: "app-1"})
	assert.NoError(t, err)

	entry := result.Entries[0]
	assert.Equal(t, "both", entry.Kind)
	assert.Equal(t, "under-review", entry.OldStatus)
	assert.Equal(t, "shortlisted", entry.NewStatus)
	assert.Equal(t, 7.5, *entry.OldScore)
	assert.Equal(t, 8.5, *entry.NewScore)
	assert.NotEmpty(t, entry.RecordedAgo)
}

func TestReviewHistoryByReviewer(t *testing.T) {
	repo := &fakeHistoryRepo{}
	handler := NewReviewHistoryHandler(repo)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		seedEntry(t, repo, "e-"+id, "app-"+id, "rev-1", application.ChangeStatus, base.Add(time.Duration(i)*time.Minute))
	}
	seedEntry(t, repo, "e-other", "app-x", "rev-2", application.ChangeScore, base)

	result, err := handler.Handle(context.Background(), ReviewHistoryQuery{ReviewerID: "rev-1", Limit: 3})

	assert.NoError(t, err)
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, "e-e", result.Entries[0].EntryID)
	for _, e := range result.Entries {
		assert.Equal(t, "rev-1", e.ReviewerID)
	}
}

func TestReviewHistoryValidation(t *testing.T) {
	handler := NewReviewHistoryHandler(&fakeHistoryRepo{})

	_, err := handler.Handle(context.Background(), ReviewHistoryQuery{})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = handler.Handle(context.Background(), ReviewHistoryQuery{ApplicationID: "app-1", ReviewerID: "rev-1"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestReviewHistoryEmptyTrail(t *testing.T) {
	handler := NewReviewHistoryHandler(&fakeHistoryRepo{})

	result, err := handler.Handle(context.Background(), ReviewHistoryQuery{ApplicationID: "app-none"})

	assert.NoError(t, err)
	assert.Equal(t, 0, result.TotalCount)
	assert.Empty(t, result.Entries)
}
