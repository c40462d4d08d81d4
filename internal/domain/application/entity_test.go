package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
)

func testApplication(t *testing.T) *Application {
	a, err := NewApplication("app-1", "stu-1", "op-1", "win-1", FormSnapshot{
		Name:      "Arjun Mehta",
		Email:     "arjun@campus.edu",
		Branch:    "CSE",
		BatchYear: 2026,
		CGPA:      8.2,
	}, time.Now())
	assert.NoError(t, err)
	return a
}

func TestStatusTransitionGraph(t *testing.T) {
	assert.True(t, StatusSubmitted.CanTransitionTo(StatusUnderReview))
	assert.True(t, StatusSubmitted.CanTransitionTo(StatusRejected))
	assert.True(t, StatusUnderReview.CanTransitionTo(StatusShortlisted))
	assert.True(t, StatusUnderReview.CanTransitionTo(StatusRejected))
	assert.True(t, StatusShortlisted.CanTransitionTo(StatusSelected))
	assert.True(t, StatusShortlisted.CanTransitionTo(StatusRejected))

	// The round-entry reset: an advancing candidate goes back to submitted.
	assert.True(t, StatusShortlisted.CanTransitionTo(StatusSubmitted))

	// No skipping stages and no leaving a terminal status.
	assert.False(t, StatusSubmitted.CanTransitionTo(StatusShortlisted))
	assert.False(t, StatusSubmitted.CanTransitionTo(StatusSelected))
	assert.False(t, StatusUnderReview.CanTransitionTo(StatusSelected))
	assert.False(t, StatusUnderReview.CanTransitionTo(StatusSubmitted))
	assert.False(t, StatusRejected.CanTransitionTo(StatusUnderReview))
	assert.False(t, StatusSelected.CanTransitionTo(StatusRejected))
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusSelected.IsTerminal())
	assert.False(t, StatusSubmitted.IsTerminal())
	assert.False(t, StatusUnderReview.IsTerminal())
	assert.False(t, StatusShortlisted.IsTerminal())

	assert.False(t, Status("archived").IsValid())
	assert.False(t, Status("archived").IsTerminal())
}

func TestNewApplication(t *testing.T) {
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	a, err := NewApplication("app-1", "stu-1", "op-1", "win-1", FormSnapshot{CGPA: 8.2}, now)

	assert.NoError(t, err)
	assert.Equal(t, StatusSubmitted, a.Status)
	assert.Equal(t, 0, a.RoundNumber)
	assert.Nil(t, a.Score)
	assert.Equal(t, now.UTC(), a.AppliedAt)

	_, err = NewApplication("", "stu-1", "op-1", "win-1", FormSnapshot{}, now)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewApplication("app-1", "stu-1", "", "win-1", FormSnapshot{}, now)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestTransitionEnforcesGraph(t *testing.T) {
	a := testApplication(t)

	assert.NoError(t, a.Transition(StatusUnderReview, time.Now()))
	assert.Equal(t, StatusUnderReview, a.Status)

	err := a.Transition(StatusSubmitted, time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Equal(t, StatusUnderReview, a.Status)

	err = a.Transition(Status("archived"), time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestTerminalApplicationIsImmutable(t *testing.T) {
	a := testApplication(t)
	assert.NoError(t, a.Transition(StatusUnderReview, time.Now()))
	assert.NoError(t, a.Transition(StatusRejected, time.Now()))

	err := a.Transition(StatusUnderReview, time.Now())
	assert.ErrorIs(t, err, shared.ErrTerminalApplication)
	assert.True(t, shared.IsTerminalState(err))

	err = a.SetScore(50, time.Now())
	assert.ErrorIs(t, err, shared.ErrTerminalApplication)
	assert.Nil(t, a.Score)
}

func TestSetScore(t *testing.T) {
	a := testApplication(t)

	assert.NoError(t, a.SetScore(72.5, time.Now()))
	assert.Equal(t, 72.5, *a.Score)

	assert.NoError(t, a.SetScore(80, time.Now()))
	assert.Equal(t, 80.0, *a.Score)

	assert.ErrorIs(t, a.SetScore(-1, time.Now()), shared.ErrInvalidScore)
	assert.ErrorIs(t, a.SetScore(100.5, time.Now()), shared.ErrInvalidScore)
	assert.Equal(t, 80.0, *a.Score)
}

func TestEnterRoundRequiresShortlistAndOrder(t *testing.T) {
	a := testApplication(t)

	err := a.EnterRound(1, time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	assert.NoError(t, a.Transition(StatusUnderReview, time.Now()))
	assert.NoError(t, a.Transition(StatusShortlisted, time.Now()))

	assert.ErrorIs(t, a.EnterRound(2, time.Now()), shared.ErrRoundNotOrdered)

	assert.NoError(t, a.EnterRound(1, time.Now()))
	assert.Equal(t, 1, a.RoundNumber)

	assert.NoError(t, a.EnterRound(2, time.Now()))
	assert.Equal(t, 2, a.RoundNumber)
}

func TestLeaveRound(t *testing.T) {
	a := testApplication(t)
	assert.NoError(t, a.Transition(StatusUnderReview, time.Now()))
	assert.NoError(t, a.Transition(StatusShortlisted, time.Now()))
	assert.NoError(t, a.EnterRound(1, time.Now()))

	assert.NoError(t, a.LeaveRound(time.Now()))
	assert.Equal(t, 0, a.RoundNumber)

	err := a.LeaveRound(time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestCloneIsDeep(t *testing.T) {
	a := testApplication(t)
	assert.NoError(t, a.SetScore(60, time.Now()))

	clone := a.Clone()
	*clone.Score = 90

	assert.Equal(t, 60.0, *a.Score)
	assert.Equal(t, 90.0, *clone.Score)
}
