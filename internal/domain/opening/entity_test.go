package opening

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/internal/domain/student"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func testOpening(t *testing.T) *Opening {
	o, err := NewOpening(NewOpeningParams{
		ID:        "op-1",
		Company:   "Acme Corp",
		Role:      "SDE",
		Deadline:  timeutil.Date(2026, 12, 31),
		Positions: 3,
	}, timeutil.DateTime(2026, 1, 1, 0, 0, 0))
	assert.NoError(t, err)
	return o
}

func TestNewOpeningValidation(t *testing.T) {
	now := timeutil.DateTime(2026, 1, 1, 0, 0, 0)

	o := testOpening(t)
	assert.Equal(t, StatusActive, o.Status)

	_, err := NewOpening(NewOpeningParams{ID: "op-2", Company: "  ", Deadline: timeutil.Date(2026, 6, 1), Positions: 1}, now)
	assert.ErrorIs(t, err, ErrInvalidCompany)

	_, err = NewOpening(NewOpeningParams{ID: "op-2", Company: "Acme", Deadline: timeutil.Date(2026, 6, 1), Positions: 0}, now)
	assert.ErrorIs(t, err, ErrInvalidPositions)

	_, err = NewOpening(NewOpeningParams{ID: "op-2", Company: "Acme", Deadline: timeutil.Date(2025, 6, 1), Positions: 1}, now)
	assert.ErrorIs(t, err, ErrInvalidDeadline)

	_, err = NewOpening(NewOpeningParams{
		ID: "op-2", Company: "Acme", Deadline: timeutil.Date(2026, 6, 1), Positions: 1,
		DefaultCriteria: EligibilityCriteria{MinCGPA: fptr(11)},
	}, now)
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)
}

func TestIsAcceptingApplications(t *testing.T) {
	o := testOpening(t)

	assert.NoError(t, o.IsAcceptingApplications(timeutil.DateTime(2026, 6, 1, 12, 0, 0)))

	err := o.IsAcceptingApplications(timeutil.DateTime(2027, 1, 1, 0, 0, 0))
	assert.ErrorIs(t, err, shared.ErrDeadlinePassed)

	assert.NoError(t, o.Deactivate())
	err = o.IsAcceptingApplications(timeutil.DateTime(2026, 6, 1, 12, 0, 0))
	assert.ErrorIs(t, err, shared.ErrOpeningInactive)

	assert.NoError(t, o.Reactivate())
	assert.NoError(t, o.IsAcceptingApplications(timeutil.DateTime(2026, 6, 1, 12, 0, 0)))

	o.MarkCompleted()
	assert.ErrorIs(t, o.Deactivate(), shared.ErrOpeningInactive)
	assert.ErrorIs(t, o.Reactivate(), shared.ErrOpeningInactive)
}

func TestCriteriaValidate(t *testing.T) {
	assert.NoError(t, EligibilityCriteria{}.Validate())
	assert.NoError(t, EligibilityCriteria{MinCGPA: fptr(7.5), MaxBacklogs: iptr(0)}.Validate())

	assert.ErrorIs(t, EligibilityCriteria{MinCGPA: fptr(-1)}.Validate(), shared.ErrValueOutOfRange)
	assert.ErrorIs(t, EligibilityCriteria{MaxBacklogs: iptr(-1)}.Validate(), shared.ErrValueOutOfRange)
	assert.ErrorIs(t, EligibilityCriteria{Branches: []shared.Branch{"C"}}.Validate(), shared.ErrInvalidInput)
}

func TestCriteriaMergeDefaults(t *testing.T) {
	defaults := EligibilityCriteria{
		MinCGPA:     fptr(7.0),
		MaxBacklogs: iptr(1),
		Branches:    []shared.Branch{"CSE"},
		PassingYear: iptr(2026),
	}

	merged := EligibilityCriteria{}.MergeDefaults(defaults)
	assert.Equal(t, 7.0, *merged.MinCGPA)
	assert.Equal(t, 1, *merged.MaxBacklogs)
	assert.Equal(t, []shared.Branch{"CSE"}, merged.Branches)
	assert.Equal(t, 2026, *merged.PassingYear)

	// A window override wins over the opening default, dimension by dimension.
	merged = EligibilityCriteria{MinCGPA: fptr(8.0), Branches: []shared.Branch{"ECE"}}.MergeDefaults(defaults)
	assert.Equal(t, 8.0, *merged.MinCGPA)
	assert.Equal(t, []shared.Branch{"ECE"}, merged.Branches)
	assert.Equal(t, 1, *merged.MaxBacklogs)
}

func TestCriteriaAllowsBranch(t *testing.T) {
	c := EligibilityCriteria{Branches: []shared.Branch{"cse", "ECE"}}

	assert.True(t, c.AllowsBranch("CSE"))
	assert.True(t, c.AllowsBranch("ece"))
	assert.False(t, c.AllowsBranch("MECH"))

	assert.True(t, EligibilityCriteria{}.AllowsBranch("MECH"))
}

func TestCriteriaMatchesAcademics(t *testing.T) {
	s, err := student.NewStudent(student.NewStudentParams{
		ID:        "stu-1",
		Email:     "priya@campus.edu",
		Name:      "Priya Sharma",
		Branch:    "ECE",
		BatchYear: 2026,
		CGPA:      7.4,
		Backlogs:  1,
	})
	assert.NoError(t, err)

	assert.True(t, EligibilityCriteria{MinCGPA: fptr(7.0), MaxBacklogs: iptr(1)}.MatchesAcademics(s))
	assert.False(t, EligibilityCriteria{MinCGPA: fptr(7.5)}.MatchesAcademics(s))
	assert.False(t, EligibilityCriteria{MaxBacklogs: iptr(0)}.MatchesAcademics(s))
	assert.False(t, EligibilityCriteria{PassingYear: iptr(2027)}.MatchesAcademics(s))
	assert.True(t, EligibilityCriteria{}.MatchesAcademics(s))
}
