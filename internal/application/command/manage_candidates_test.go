package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/campus-placement-hub/internal/domain/application"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
)

type candidateEnv struct {
	applications *fakeApplicationRepo
	history      *fakeHistoryRepo
	rounds       *fakeRoundRepo
	events       *fakeEventPublisher
	add          *AddCandidateHandler
	remove       *RemoveCandidateHandler
}

func newCandidateEnv() *candidateEnv {
	env := &candidateEnv{
		applications: newFakeApplicationRepo(),
		history:      newFakeHistoryRepo(),
		rounds:       newFakeRoundRepo(),
		events:       &fakeEventPublisher{},
	}
	env.add = NewAddCandidateHandler(env.rounds, env.applications, env.history, env.events)
	env.remove = NewRemoveCandidateHandler(env.rounds, env.applications, env.history, env.events)
	return env
}

func TestAddCandidateShortlistsAndClaimsSlot(t *testing.T) {
	env := newCandidateEnv()
	seedRound(t, env.rounds, "rnd-1", "op-1", 1, iptr(10))
	seedApplication(t, env.applications, "app-1", "stu-1", "op-1", application.StatusUnderReview)

	result, err := env.add.Handle(context.Background(), AddCandidateCommand{
		RoundID:       "rnd-1",
		ApplicationID: "app-1",
		ReviewerID:    "tpo-1",
	})

	assert.NoError(t, err)
	assert.True(t, result.Shortlisted)
	assert.Equal(t, 1, result.RoundNumber)

	a, _ := env.applications.GetByID(context.Background(), "app-1")
	assert.Equal(t, application.StatusShortlisted, a.Status)
	assert.Equal(t, 1, a.RoundNumber)

	r, _ := env.rounds.GetByID(context.Background(), "rnd-1")
	assert.Equal(t, 1, r.CurrentCandidates)

	entries, _ := env.history.ListByApplication(context.Background(), "app-1")
	assert.Len(t, entries, 1)
	assert.Equal(t, application.StatusUnderReview, entries[0].OldStatus)
	assert.Equal(t, application.StatusShortlisted, entries[0].NewStatus)
	assert.Equal(t, []shared.EventType{shared.EventApplicationStatusChanged}, env.events.types())
}

func TestAddCandidateAlreadyShortlisted(t *testing.T) {
	env := newCandidateEnv()
	seedRound(t, env.rounds, "rnd-1", "op-1", 1, nil)
	seedApplication(t, env.applications, "app-1", "stu-1", "op-1", application.StatusShortlisted)

	result, err := env.add.Handle(context.Background(), AddCandidateCommand{
		RoundID:       "rnd-1",
		ApplicationID: "app-1",
		ReviewerID:    "tpo-1",
	})

	assert.NoError(t, err)
	assert.False(t, result.Shortlisted)

	// No status move, no audit line, no event.
	entries, _ := env.history.ListByApplication(context.Background(), "app-1")
	assert.Empty(t, entries)
	assert.Empty(t, env.events.events)
}

func TestAddCandidateFullRound(t *testing.T) {
	env := newCandidateEnv()
	seedRound(t, env.rounds, "rnd-1", "op-1", 1, iptr(1))
	seedApplication(t, env.applications, "app-1", "stu-1", "op-1", application.StatusShortlisted)
	seedApplication(t, env.applications, "app-2", "stu-2", "op-1", application.StatusShortlisted)

	_, err := env.add.Handle(context.Background(), AddCandidateCommand{
		RoundID: "rnd-1", ApplicationID: "app-1", ReviewerID: "tpo-1",
	})
	assert.NoError(t, err)

	_, err = env.add.Handle(context.Background(), AddCandidateCommand{
		RoundID: "rnd-1", ApplicationID: "app-2", ReviewerID: "tpo-1",
	})
	assert.ErrorIs(t, err, shared.ErrRoundFull)
	assert.True(t, shared.IsConflict(err))

	// The overflow candidate is untouched.
	a2, _ := env.applications.GetByID(context.Background(), "app-2")
	assert.Equal(t, 0, a2.RoundNumber)
	r, _ := env.rounds.GetByID(context.Background(), "rnd-1")
	assert.Equal(t, 1, r.CurrentCandidates)
}

func TestAddCandidateWrongOpening(t *testing.T) {
	env := newCandidateEnv()
	seedRound(t, env.rounds, "rnd-1", "op-1", 1, nil)
	seedApplication(t, env.applications, "app-1", "stu-1", "op-other", application.StatusShortlisted)

	_, err := env.add.Handle(context.Background(), AddCandidateCommand{
		RoundID: "rnd-1", ApplicationID: "app-1", ReviewerID: "tpo-1",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestAddCandidateAlreadyInRound(t *testing.T) {
	env := newCandidateEnv()
	seedRound(t, env.rounds, "rnd-1", "op-1", 1, nil)
	seedApplication(t, env.applications, "app-1", "stu-1", "op-1", application.StatusUnderReview)

	_, err := env.add.Handle(context.Background(), AddCandidateCommand{
		RoundID: "rnd-1", ApplicationID: "app-1", ReviewerID: "tpo-1",
	})
	assert.NoError(t, err)

	_, err = env.add.Handle(context.Background(), AddCandidateCommand{
		RoundID: "rnd-1", ApplicationID: "app-1", ReviewerID: "tpo-1",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestAddCandidateSkippingRoundsReleasesSlot(t *testing.T) {
	env := newCandidateEnv()
	seedRound(t, env.rounds, "rnd-2", "op-1", 2, iptr(5))
	seedApplication(t, env.applications, "app-1", "stu-1", "op-1", application.StatusShortlisted)

	// The candidate never sat in round 1, so entering round 2 is rejected
	// and the claimed slot is given back.
	_, err := env.add.Handle(context.Background(), AddCandidateCommand{
		RoundID: "rnd-2", ApplicationID: "app-1", ReviewerID: "tpo-1",
	})
	assert.ErrorIs(t, err, shared.ErrRoundNotOrdered)

	r, _ := env.rounds.GetByID(context.Background(), "rnd-2")
	assert.Equal(t, 0, r.CurrentCandidates)
}

func TestRemoveCandidate(t *testing.T) {
	env := newCandidateEnv()
	seedRound(t, env.rounds, "rnd-1", "op-1", 1, iptr(5))
	seedApplication(t, env.applications, "app-1", "stu-1", "op-1", application.StatusUnderReview)

	_, err := env.add.Handle(context.Background(), AddCandidateCommand{
		RoundID: "rnd-1", ApplicationID: "app-1", ReviewerID: "tpo-1",
	})
	assert.NoError(t, err)

	err = env.remove.Handle(context.Background(), RemoveCandidateCommand{
		RoundID: "rnd-1", ApplicationID: "app-1", ReviewerID: "tpo-1",
	})
	assert.NoError(t, err)

	// The candidate is out of the pipeline: round reference cleared,
	// application rejected, slot released.
	a, _ := env.applications.GetByID(context.Background(), "app-1")
	assert.Equal(t, 0, a.RoundNumber)
	assert.Equal(t, application.StatusRejected, a.Status)

	r, _ := env.rounds.GetByID(context.Background(), "rnd-1")
	assert.Equal(t, 0, r.CurrentCandidates)

	// The rejection leaves its own audit line after the shortlist one.
	entries, _ := env.history.ListByApplication(context.Background(), "app-1")
	assert.Len(t, entries, 2)
	assert.Equal(t, application.StatusShortlisted, entries[0].OldStatus)
	assert.Equal(t, application.StatusRejected, entries[0].NewStatus)
	assert.Equal(t, "tpo-1", entries[0].ReviewerID)
	assert.Equal(t, []shared.EventType{
		shared.EventApplicationStatusChanged,
		shared.EventApplicationStatusChanged,
	}, env.events.types())
}

func TestRemoveCandidateNotInRound(t *testing.T) {
	env := newCandidateEnv()
	seedRound(t, env.rounds, "rnd-1", "op-1", 1, nil)
	seedApplication(t, env.applications, "app-1", "stu-1", "op-1", application.StatusShortlisted)

	err := env.remove.Handle(context.Background(), RemoveCandidateCommand{
		RoundID: "rnd-1", ApplicationID: "app-1", ReviewerID: "tpo-1",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestRemoveCandidateRequiresReviewer(t *testing.T) {
	env := newCandidateEnv()

	err := env.remove.Handle(context.Background(), RemoveCandidateCommand{
		RoundID: "rnd-1", ApplicationID: "app-1",
	})
	assert.Error(t, err)
}
