package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyChange(t *testing.T) {
	kind, ok := ClassifyChange(true, true)
	assert.True(t, ok)
	assert.Equal(t, ChangeBoth, kind)

	kind, ok = ClassifyChange(true, false)
	assert.True(t, ok)
	assert.Equal(t, ChangeStatus, kind)

	kind, ok = ClassifyChange(false, true)
	assert.True(t, ok)
	assert.Equal(t, ChangeScore, kind)

	_, ok = ClassifyChange(false, false)
	assert.False(t, ok)
}

func TestReviewEntryBuilders(t *testing.T) {
	now := time.Now()
	old := 40.0

	e := NewReviewEntry("rev-1", "app-1", "tpo-1", ChangeBoth, now).
		WithStatusChange(StatusUnderReview, StatusShortlisted).
		WithScoreChange(&old, 75).
		WithComment("strong coding round")

	assert.Equal(t, "app-1", e.ApplicationID)
	assert.Equal(t, StatusUnderReview, e.OldStatus)
	assert.Equal(t, StatusShortlisted, e.NewStatus)
	assert.Equal(t, 40.0, *e.OldScore)
	assert.Equal(t, 75.0, *e.NewScore)
	assert.Equal(t, "strong coding round", e.Comment)
	assert.Equal(t, now.UTC(), e.RecordedAt)

	// OldScore is a copy, not an alias of the caller's value.
	old = 99
	assert.Equal(t, 40.0, *e.OldScore)
}

func TestReviewEntryFirstScoreHasNilOldScore(t *testing.T) {
	e := NewReviewEntry("rev-1", "app-1", "tpo-1", ChangeScore, time.Now()).
		WithScoreChange(nil, 55)

	assert.Nil(t, e.OldScore)
	assert.Equal(t, 55.0, *e.NewScore)
}
