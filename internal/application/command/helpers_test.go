package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/campus-placement-hub/internal/domain/application"
	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/round"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/internal/domain/student"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func statusPtr(s application.Status) *application.Status { return &s }

func seedStudent(t *testing.T, repo *fakeStudentRepo, id string) *student.Student {
	s, err := student.NewStudent(student.NewStudentParams{
		ID:        id,
		Email:     shared.Email(id + "@campus.edu"),
		Name:      "Student " + id,
		Branch:    "CSE",
		BatchYear: 2026,
		CGPA:      8.0,
		Backlogs:  0,
	})
	assert.NoError(t, err)
	assert.NoError(t, repo.Create(context.Background(), s))
	return s
}

func seedOpening(t *testing.T, repo *fakeOpeningRepo, id string) *opening.Opening {
	o, err := opening.NewOpening(opening.NewOpeningParams{
		ID:        id,
		Company:   "Acme Corp",
		Role:      "SDE",
		Deadline:  timeutil.Now().AddDate(1, 0, 0),
		Positions: 3,
	}, timeutil.Now())
	assert.NoError(t, err)
	assert.NoError(t, repo.Create(context.Background(), o))
	return o
}

// seedOpenWindow stores a window spanning yesterday through tomorrow, so the
// handlers' wall-clock checks see it as open.
func seedOpenWindow(t *testing.T, repo *fakeWindowRepo, o *opening.Opening, criteria opening.EligibilityCriteria) *opening.ApplicationWindow {
	w, err := opening.NewWindow(opening.NewWindowParams{
		ID:        "win-" + o.ID,
		OpeningID: o.ID,
		StartDate: timeutil.Now().AddDate(0, 0, -1),
		StartTime: shared.TimeOfDay{Hour: 0, Minute: 0},
		EndDate:   timeutil.Now().AddDate(0, 0, 1),
		EndTime:   shared.TimeOfDay{Hour: 23, Minute: 59},
		Criteria:  criteria,
	}, o, timeutil.Now())
	assert.NoError(t, err)
	assert.NoError(t, repo.Create(context.Background(), w))
	return w
}

func seedApplication(t *testing.T, repo *fakeApplicationRepo, id, studentID, openingID string, status application.Status) *application.Application {
	a, err := application.NewApplication(id, studentID, openingID, "win-"+openingID, application.FormSnapshot{
		Name:      "Student " + studentID,
		Branch:    "CSE",
		BatchYear: 2026,
		CGPA:      8.0,
	}, time.Now())
	assert.NoError(t, err)

	// Walk the state machine instead of poking the status directly.
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

func seedRound(t *testing.T, repo *fakeRoundRepo, id, openingID string, number int, maxCandidates *int) *round.Round {
	r, err := round.NewRound(round.NewRoundParams{
		ID:            id,
		OpeningID:     openingID,
		Number:        number,
		Name:          "Round " + id,
		ScheduledAt:   timeutil.Now().Add(48 * time.Hour),
		MaxCandidates: maxCandidates,
	}, timeutil.Now())
	assert.NoError(t, err)
	assert.NoError(t, repo.Create(context.Background(), r))
	return r
}
