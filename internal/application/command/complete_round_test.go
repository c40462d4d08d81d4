package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/campus-placement-hub/internal/domain/application"
	"github.com/campus-hub/campus-placement-hub/internal/domain/round"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
)

type roundEnv struct {
	students     *fakeStudentRepo
	applications *fakeApplicationRepo
	history      *fakeHistoryRepo
	rounds       *fakeRoundRepo
	events       *fakeEventPublisher
	handler      *CompleteRoundHandler
}

func newRoundEnv() *roundEnv {
	env := &roundEnv{
		students:     newFakeStudentRepo(),
		applications: newFakeApplicationRepo(),
		history:      newFakeHistoryRepo(),
		rounds:       newFakeRoundRepo(),
		events:       &fakeEventPublisher{},
	}
	finalizer := NewFinalizePlacementHandler(env.applications, env.students, nil, env.events)
	env.handler = NewCompleteRoundHandler(env.rounds, env.applications, env.history, finalizer, env.events)
	return env
}

// seedCandidate puts a shortlisted application into round 1 of the opening.
func (env *roundEnv) seedCandidate(t *testing.T, appID, studentID, openingID string) {
	seedStudent(t, env.students, studentID)
	a := seedApplication(t, env.applications, appID, studentID, openingID, application.StatusShortlisted)
	assert.NoError(t, a.EnterRound(1, a.UpdatedAt))
	assert.NoError(t, env.applications.Update(context.Background(), a))
}

func TestCompleteRoundAdvancesAndRejects(t *testing.T) {
	env := newRoundEnv()
	seedRound(t, env.rounds, "rnd-1", "op-1", 1, nil)
	seedRound(t, env.rounds, "rnd-2", "op-1", 2, nil)
	env.seedCandidate(t, "app-1", "stu-1", "op-1")
	env.seedCandidate(t, "app-2", "stu-2", "op-1")

	result, err := env.handler.Handle(context.Background(), CompleteRoundCommand{
		RoundID:    "rnd-1",
		ReviewerID: "tpo-1",
		Outcomes: []RoundOutcome{
			{ApplicationID: "app-1", Passed: true, Score: fptr(85)},
			{ApplicationID: "app-2", Passed: false, Score: fptr(40)},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.AdvancedCount)
	assert.Equal(t, 1, result.RejectedCount)
	assert.Equal(t, 0, result.FailedCount)

	// The advanced candidate re-enters the review cycle in round 2.
	a1, _ := env.applications.GetByID(context.Background(), "app-1")
	assert.Equal(t, application.StatusSubmitted, a1.Status)
	assert.Equal(t, 2, a1.RoundNumber)
	assert.Equal(t, 85.0, *a1.Score)

	a2, _ := env.applications.GetByID(context.Background(), "app-2")
	assert.Equal(t, application.StatusRejected, a2.Status)

	r1, _ := env.rounds.GetByID(context.Background(), "rnd-1")
	assert.Equal(t, round.StatusCompleted, r1.Status)

	r2, _ := env.rounds.GetByID(context.Background(), "rnd-2")
	assert.Equal(t, 1, r2.CurrentCandidates)

	// Every moved candidate leaves an audit line.
	entries, _ := env.history.ListByApplication(context.Background(), "app-1")
	assert.Len(t, entries, 1)
	assert.Equal(t, application.ChangeBoth, entries[0].Kind)
	assert.Equal(t, application.StatusShortlisted, entries[0].OldStatus)
	assert.Equal(t, application.StatusSubmitted, entries[0].NewStatus)
	entries, _ = env.history.ListByApplication(context.Background(), "app-2")
	assert.Len(t, entries, 1)
	assert.Equal(t, application.ChangeBoth, entries[0].Kind)
}

func TestCompleteFinalRoundSelectsAndPlaces(t *testing.T) {
	env := newRoundEnv()
	seedRound(t, env.rounds, "rnd-1", "op-1", 1, nil)
	env.seedCandidate(t, "app-1", "stu-1", "op-1")

	// No round 2 is scheduled, so round 1 is terminal.
	result, err := env.handler.Handle(context.Background(), CompleteRoundCommand{
		RoundID:    "rnd-1",
		ReviewerID: "tpo-1",
		Outcomes:   []RoundOutcome{{ApplicationID: "app-1", Passed: true}},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.SelectedCount)

	a, _ := env.applications.GetByID(context.Background(), "app-1")
	assert.Equal(t, application.StatusSelected, a.Status)

	s, _ := env.students.GetByID(context.Background(), "stu-1")
	assert.True(t, s.Placed)
	assert.Equal(t, "op-1", s.PlacedOpeningID)
}

func TestCompleteRoundFinalityFollowsSchedule(t *testing.T) {
	env := newRoundEnv()
	seedRound(t, env.rounds, "rnd-1", "op-1", 1, nil)
	seedRound(t, env.rounds, "rnd-2", "op-1", 2, nil)
	env.seedCandidate(t, "app-1", "stu-1", "op-1")

	// Round 2 is scheduled, so a round-1 passer advances instead of being
	// selected, whatever the caller might have intended.
	first, err := env.handler.Handle(context.Background(), CompleteRoundCommand{
		RoundID:    "rnd-1",
		ReviewerID: "tpo-1",
		Outcomes:   []RoundOutcome{{ApplicationID: "app-1", Passed: true}},
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, first.AdvancedCount)
	assert.Equal(t, 0, first.SelectedCount)

	// The candidate clears round 2's review cycle and gets shortlisted.
	a, _ := env.applications.GetByID(context.Background(), "app-1")
	assert.NoError(t, a.Transition(application.StatusUnderReview, a.UpdatedAt))
	assert.NoError(t, a.Transition(application.StatusShortlisted, a.UpdatedAt))
	assert.NoError(t, env.applications.Update(context.Background(), a))

	// Round 2 has no successor: completing it selects the passer.
	second, err := env.handler.Handle(context.Background(), CompleteRoundCommand{
		RoundID:    "rnd-2",
		ReviewerID: "tpo-1",
		Outcomes:   []RoundOutcome{{ApplicationID: "app-1", Passed: true}},
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, second.SelectedCount)

	s, _ := env.students.GetByID(context.Background(), "stu-1")
	assert.True(t, s.Placed)
}

func TestCompleteRoundRerunSkipsProcessedCandidates(t *testing.T) {
	env := newRoundEnv()
	seedRound(t, env.rounds, "rnd-1", "op-1", 1, nil)
	seedRound(t, env.rounds, "rnd-2", "op-1", 2, nil)
	env.seedCandidate(t, "app-1", "stu-1", "op-1")
	env.seedCandidate(t, "app-2", "stu-2", "op-1")

	outcomes := []RoundOutcome{
		{ApplicationID: "app-1", Passed: true},
		{ApplicationID: "app-2", Passed: false},
	}
	first, err := env.handler.Handle(context.Background(), CompleteRoundCommand{
		RoundID: "rnd-1", ReviewerID: "tpo-1", Outcomes: outcomes,
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, first.AdvancedCount)
	assert.Equal(t, 1, first.RejectedCount)

	second, err := env.handler.Handle(context.Background(), CompleteRoundCommand{
		RoundID: "rnd-1", ReviewerID: "tpo-1", Outcomes: outcomes,
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, second.SkippedCount)
	assert.Equal(t, 0, second.AdvancedCount)
	assert.Equal(t, 0, second.RejectedCount)

	// The next round's counter was not bumped again.
	r2, _ := env.rounds.GetByID(context.Background(), "rnd-2")
	assert.Equal(t, 1, r2.CurrentCandidates)
}

func TestCompleteRoundPartialFailure(t *testing.T) {
	env := newRoundEnv()
	seedRound(t, env.rounds, "rnd-1", "op-1", 1, nil)
	seedRound(t, env.rounds, "rnd-2", "op-1", 2, iptr(1))
	env.seedCandidate(t, "app-1", "stu-1", "op-1")
	env.seedCandidate(t, "app-2", "stu-2", "op-1")

	// Both pass but the next round holds one seat: the overflow candidate
	// fails without blocking the rest of the sweep.
	result, err := env.handler.Handle(context.Background(), CompleteRoundCommand{
		RoundID:    "rnd-1",
		ReviewerID: "tpo-1",
		Outcomes: []RoundOutcome{
			{ApplicationID: "app-1", Passed: true},
			{ApplicationID: "app-2", Passed: true},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.AdvancedCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors["app-2"], shared.ErrRoundFull)
}

func TestCompleteRoundRejectsForeignCandidate(t *testing.T) {
	env := newRoundEnv()
	seedRound(t, env.rounds, "rnd-1", "op-1", 1, nil)
	env.seedCandidate(t, "app-other", "stu-1", "op-other")

	result, err := env.handler.Handle(context.Background(), CompleteRoundCommand{
		RoundID:    "rnd-1",
		ReviewerID: "tpo-1",
		Outcomes:   []RoundOutcome{{ApplicationID: "app-other", Passed: false}},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.FailedCount)
	assert.ErrorIs(t, result.Errors["app-other"], shared.ErrInvalidInput)
}

func TestCompleteCancelledRound(t *testing.T) {
	env := newRoundEnv()
	r := seedRound(t, env.rounds, "rnd-1", "op-1", 1, nil)
	assert.NoError(t, r.Cancel())
	assert.NoError(t, env.rounds.Update(context.Background(), r))

	_, err := env.handler.Handle(context.Background(), CompleteRoundCommand{
		RoundID:    "rnd-1",
		ReviewerID: "tpo-1",
		Outcomes:   []RoundOutcome{{ApplicationID: "app-1", Passed: true}},
	})

	assert.ErrorIs(t, err, shared.ErrRoundCompleted)
}
