package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/campus-placement-hub/internal/domain/application"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
)

func seedApp(t *testing.T, repo *fakeApplicationRepo, id, studentID, openingID string, status application.Status) *application.Application {
	a, err := application.NewApplication(id, studentID, openingID, "win-1", application.FormSnapshot{
		Name: "Student " + studentID, Branch: "CSE", CGPA: 8.0,
	}, time.Now())
	assert.NoError(t, err)
	for a.Status != status {
		next := application.StatusUnderReview
		switch a.Status {
		case application.StatusUnderReview:
			if status == application.StatusRejected {
				next = application.StatusRejected
			} else {
				next = application.StatusShortlisted
			}
		case application.StatusShortlisted:
			if status == application.StatusRejected {
				next = application.StatusRejected
			} else {
				next = application.StatusSelected
			}
		}
		assert.NoError(t, a.Transition(next, time.Now()))
	}
	assert.NoError(t, repo.Create(context.Background(), a))
	return a
}

func TestApplicationStatusByID(t *testing.T) {
	repo := newFakeApplicationRepo()
	handler := NewApplicationStatusHandler(repo)

	seedApp(t, repo, "app-1", "stu-1", "op-1", application.StatusRejected)

	result, err := handler.Handle(context.Background(), ApplicationStatusQuery{ApplicationID: "app-1"})

	assert.NoError(t, err)
	assert.Equal(t, "app-1", result.Application.ApplicationID)
	assert.Equal(t, "rejected", result.Application.Status)
	assert.True(t, result.Application.Terminal)
	assert.Equal(t, "Student stu-1", result.Application.Snapshot.Name)
}

func TestApplicationStatusByStudentAndOpening(t *testing.T) {
	repo := newFakeApplicationRepo()
	handler := NewApplicationStatusHandler(repo)

	seedApp(t, repo, "app-1", "stu-1", "op-1", application.StatusSubmitted)

	result, err := handler.Handle(context.Background(), ApplicationStatusQuery{StudentID: "stu-1", OpeningID: "op-1"})
	assert.NoError(t, err)
	assert.Equal(t, "app-1", result.Application.ApplicationID)
	assert.False(t, result.Application.Terminal)

	_, err = handler.Handle(context.Background(), ApplicationStatusQuery{StudentID: "stu-1", OpeningID: "op-other"})
	assert.ErrorIs(t, err, shared.ErrApplicationNotFound)

	_, err = handler.Handle(context.Background(), ApplicationStatusQuery{StudentID: "stu-1"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestOpeningApplicationsFilterAndPaging(t *testing.T) {
	repo := newFakeApplicationRepo()
	handler := NewOpeningApplicationsHandler(repo)

	seedApp(t, repo, "app-1", "stu-1", "op-1", application.StatusSubmitted)
	seedApp(t, repo, "app-2", "stu-2", "op-1", application.StatusRejected)
	seedApp(t, repo, "app-3", "stu-3", "op-1", application.StatusSubmitted)
	seedApp(t, repo, "app-4", "stu-4", "op-other", application.StatusSubmitted)

	all, err := handler.Handle(context.Background(), OpeningApplicationsQuery{OpeningID: "op-1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
	assert.Len(t, all.Applications, 3)

	submitted, err := handler.Handle(context.Background(), OpeningApplicationsQuery{OpeningID: "op-1", Status: "submitted"})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), submitted.Total)
	assert.Len(t, submitted.Applications, 2)

	paged, err := handler.Handle(context.Background(), OpeningApplicationsQuery{OpeningID: "op-1", Offset: 2, Limit: 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), paged.Total)
	assert.Len(t, paged.Applications, 1)

	_, err = handler.Handle(context.Background(), OpeningApplicationsQuery{OpeningID: "op-1", Status: "archived"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestReviewHistoryQueries(t *testing.T) {
	history := &fakeHistoryRepo{}
	handler := NewReviewHistoryHandler(history)

	old := 40.0
	assert.NoError(t, history.Append(context.Background(),
		application.NewReviewEntry("rev-1", "app-1", "tpo-1", application.ChangeStatus, time.Now().Add(-time.Hour)).
			WithStatusChange(application.StatusSubmitted, application.StatusUnderReview)))
	assert.NoError(t, history.Append(context.Background(),
		application.NewReviewEntry("rev-2", "app-1", "tpo-2", application.ChangeScore, time.Now()).
			WithScoreChange(&old, 75).
			WithComment("better second attempt")))
	assert.NoError(t, history.Append(context.Background(),
		application.NewReviewEntry("rev-3", "app-2", "tpo-1", application.ChangeStatus, time.Now()).
			WithStatusChange(application.StatusSubmitted, application.StatusUnderReview)))

	byApp, err := handler.Handle(context.Background(), ReviewHistoryQuery{ApplicationID: "app-1"})
	assert.NoError(t, err)
	assert.Equal(t, 2, byApp.TotalCount)
	assert.Equal(t, "rev-2", byApp.Entries[0].EntryID)
	assert.Equal(t, "score_update", byApp.Entries[0].Kind)
	assert.Equal(t, 75.0, *byApp.Entries[0].NewScore)
	assert.Equal(t, "rev-1", byApp.Entries[1].EntryID)

	byReviewer, err := handler.Handle(context.Background(), ReviewHistoryQuery{ReviewerID: "tpo-1"})
	assert.NoError(t, err)
	assert.Equal(t, 2, byReviewer.TotalCount)
	assert.Equal(t, "rev-3", byReviewer.Entries[0].EntryID)

	_, err = handler.Handle(context.Background(), ReviewHistoryQuery{})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = handler.Handle(context.Background(), ReviewHistoryQuery{ApplicationID: "app-1", ReviewerID: "tpo-1"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
