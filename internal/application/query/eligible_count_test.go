package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/internal/domain/student"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

func iptr(v int) *int { return &v }

func seedRosterStudent(t *testing.T, repo *fakeStudentRepo, id string, cgpa float64, backlogs int, placed bool) {
	s, err := student.NewStudent(student.NewStudentParams{
		ID:        id,
		Email:     shared.Email(id + "@campus.edu"),
		Name:      "Student " + id,
		Branch:    "CSE",
		BatchYear: 2026,
		CGPA:      shared.CGPA(cgpa),
		Backlogs:  backlogs,
	})
	assert.NoError(t, err)
	assert.NoError(t, repo.Create(context.Background(), s))
	if placed {
		assert.NoError(t, repo.MarkPlaced(context.Background(), id, "op-elsewhere", timeutil.Now()))
	}
}

func TestEligibleCountSweepsRoster(t *testing.T) {
	windows := newFakeWindowRepo()
	openings := newFakeOpeningRepo()
	students := newFakeStudentRepo()
	handler := NewEligibleCountHandler(windows, students, nil, time.Minute)

	o := seedOpening(t, openings, "op-1", "Acme Corp")
	w := seedWindow(t, windows, o, "win-1", -1, 1, opening.EligibilityCriteria{
		MinCGPA:     fptr(7.0),
		MaxBacklogs: iptr(0),
	})

	seedRosterStudent(t, students, "stu-pass", 8.0, 0, false)
	seedRosterStudent(t, students, "stu-low-cgpa", 6.0, 0, false)
	seedRosterStudent(t, students, "stu-backlogs", 8.0, 2, false)
	seedRosterStudent(t, students, "stu-placed", 9.0, 0, true)

	result, err := handler.Handle(context.Background(), EligibleCountQuery{WindowID: w.ID})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), result.EligibleCount)
	assert.Equal(t, int64(3), result.TotalStudents)
	assert.False(t, result.FromCache)
}

func TestEligibleCountCaching(t *testing.T) {
	windows := newFakeWindowRepo()
	openings := newFakeOpeningRepo()
	students := newFakeStudentRepo()
	cache := newFakeWindowCache()
	handler := NewEligibleCountHandler(windows, students, cache, time.Minute)

	o := seedOpening(t, openings, "op-1", "Acme Corp")
	w := seedWindow(t, windows, o, "win-1", -1, 1, opening.EligibilityCriteria{})
	seedRosterStudent(t, students, "stu-1", 8.0, 0, false)

	first, err := handler.Handle(context.Background(), EligibleCountQuery{WindowID: w.ID})
	assert.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, 1, cache.setCounts)

	// A new registration between sweeps is invisible until the TTL expires.
	seedRosterStudent(t, students, "stu-2", 8.0, 0, false)

	second, err := handler.Handle(context.Background(), EligibleCountQuery{WindowID: w.ID})
	assert.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, int64(1), second.EligibleCount)

	fresh, err := handler.Handle(context.Background(), EligibleCountQuery{WindowID: w.ID, SkipCache: true})
	assert.NoError(t, err)
	assert.False(t, fresh.FromCache)
	assert.Equal(t, int64(2), fresh.EligibleCount)
}

func TestEligibleCountUnknownWindow(t *testing.T) {
	handler := NewEligibleCountHandler(newFakeWindowRepo(), newFakeStudentRepo(), nil, time.Minute)

	_, err := handler.Handle(context.Background(), EligibleCountQuery{WindowID: "ghost"})
	assert.ErrorIs(t, err, shared.ErrWindowNotFound)

	_, err = handler.Handle(context.Background(), EligibleCountQuery{})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
