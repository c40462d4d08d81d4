package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCGPA(t *testing.T) {
	c, err := NewCGPA(8.25)
	assert.NoError(t, err)
	assert.Equal(t, "8.2", c.String())

	_, err = NewCGPA(10.1)
	assert.ErrorIs(t, err, ErrValueOutOfRange)

	_, err = NewCGPA(-0.1)
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestScore(t *testing.T) {
	s, err := NewScore(100)
	assert.NoError(t, err)
	assert.Equal(t, 100.0, s.Float64())

	_, err = NewScore(100.01)
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestBranch(t *testing.T) {
	assert.Equal(t, Branch("CSE"), Branch(" cse ").Normalize())
	assert.True(t, Branch("CSE").IsValid())
	assert.False(t, Branch("C").IsValid())
	assert.False(t, Branch("COMPUTER SCIENCE").IsValid())
}

func TestEmail(t *testing.T) {
	assert.Equal(t, Email("a.b@campus.edu"), Email(" A.B@Campus.EDU ").Normalize())
	assert.True(t, Email("a.b@campus.edu").IsValid())
	assert.False(t, Email("a.b@campus").IsValid())
	assert.False(t, Email("campus.edu").IsValid())
}

func TestTimeOfDay(t *testing.T) {
	v, err := NewTimeOfDay(9, 30)
	assert.NoError(t, err)
	assert.Equal(t, "09:30", v.String())
	assert.Equal(t, 570, v.Minutes())

	assert.True(t, v.Before(TimeOfDay{Hour: 10}))
	assert.False(t, v.Before(TimeOfDay{Hour: 9, Minute: 30}))

	_, err = NewTimeOfDay(24, 0)
	assert.ErrorIs(t, err, ErrValueOutOfRange)
	_, err = NewTimeOfDay(0, 60)
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestDomainErrorMatching(t *testing.T) {
	assert.ErrorIs(t, ErrRoundFull, ErrConflict)
	assert.True(t, IsConflict(ErrRoundFull))
	assert.True(t, IsNotFound(ErrStudentNotFound))
	assert.True(t, IsTerminalState(ErrTerminalApplication))
	assert.True(t, IsValidation(NewDomainError("window", "Validate", ErrValueOutOfRange, "out of range")))

	wrapped := WrapError("application", "Create", ErrAlreadyExists, "duplicate", ErrDuplicateApplication)
	assert.True(t, IsAlreadyExists(wrapped))
}
