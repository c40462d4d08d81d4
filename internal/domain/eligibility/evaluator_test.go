package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/internal/domain/student"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func testStudent(t *testing.T) *student.Student {
	s, err := student.NewStudent(student.NewStudentParams{
		ID:        "stu-1",
		Email:     "arjun@campus.edu",
		Name:      "Arjun Mehta",
		Branch:    "CSE",
		BatchYear: 2026,
		CGPA:      8.2,
		Backlogs:  0,
	})
	assert.NoError(t, err)
	return s
}

// testWindow builds a window open 1-10 March 2026, 09:00-18:00 campus time.
func testWindow(t *testing.T, criteria opening.EligibilityCriteria) *opening.ApplicationWindow {
	created := timeutil.DateTime(2026, 1, 1, 0, 0, 0)
	o, err := opening.NewOpening(opening.NewOpeningParams{
		ID:        "op-1",
		Company:   "Acme Corp",
		Role:      "SDE",
		Deadline:  timeutil.Date(2026, 12, 31),
		Positions: 3,
	}, created)
	assert.NoError(t, err)

	w, err := opening.NewWindow(opening.NewWindowParams{
		ID:        "win-1",
		OpeningID: o.ID,
		StartDate: timeutil.Date(2026, 3, 1),
		StartTime: shared.TimeOfDay{Hour: 9, Minute: 0},
		EndDate:   timeutil.Date(2026, 3, 10),
		EndTime:   shared.TimeOfDay{Hour: 18, Minute: 0},
		Criteria:  criteria,
	}, o, created)
	assert.NoError(t, err)
	return w
}

func midWindow() time.Time {
	return timeutil.DateTime(2026, 3, 5, 12, 0, 0)
}

func TestEvaluateAdmitsEligibleStudent(t *testing.T) {
	w := testWindow(t, opening.EligibilityCriteria{
		MinCGPA:     fptr(7.0),
		MaxBacklogs: iptr(0),
		Branches:    []shared.Branch{"CSE", "ECE"},
		PassingYear: iptr(2026),
	})

	v := Evaluate(Input{Student: testStudent(t), Window: w, Now: midWindow()})

	assert.True(t, v.Eligible)
	assert.Empty(t, v.Reason)
}

func TestEvaluateClosedWindow(t *testing.T) {
	w := testWindow(t, opening.EligibilityCriteria{})
	s := testStudent(t)

	before := timeutil.DateTime(2026, 2, 28, 12, 0, 0)
	v := Evaluate(Input{Student: s, Window: w, Now: before})
	assert.False(t, v.Eligible)
	assert.Equal(t, ReasonWindowNotOpen, v.Reason)

	after := timeutil.DateTime(2026, 3, 10, 18, 1, 0)
	v = Evaluate(Input{Student: s, Window: w, Now: after})
	assert.False(t, v.Eligible)
	assert.Equal(t, ReasonWindowNotOpen, v.Reason)

	v = Evaluate(Input{Student: s, Window: nil, Now: midWindow()})
	assert.False(t, v.Eligible)
	assert.Equal(t, ReasonWindowNotOpen, v.Reason)
}

func TestEvaluateBoundaryInstantsCountAsOpen(t *testing.T) {
	w := testWindow(t, opening.EligibilityCriteria{})
	s := testStudent(t)

	v := Evaluate(Input{Student: s, Window: w, Now: w.OpensAt()})
	assert.True(t, v.Eligible)

	v = Evaluate(Input{Student: s, Window: w, Now: w.ClosesAt()})
	assert.True(t, v.Eligible)
}

func TestEvaluateDeactivatedWindow(t *testing.T) {
	w := testWindow(t, opening.EligibilityCriteria{})
	w.Deactivate()

	v := Evaluate(Input{Student: testStudent(t), Window: w, Now: midWindow()})
	assert.False(t, v.Eligible)
	assert.Equal(t, ReasonWindowNotOpen, v.Reason)
}

func TestEvaluateAlreadyPlaced(t *testing.T) {
	w := testWindow(t, opening.EligibilityCriteria{})
	s := testStudent(t)
	s.Placed = true

	v := Evaluate(Input{Student: s, Window: w, Now: midWindow()})
	assert.False(t, v.Eligible)
	assert.Equal(t, ReasonAlreadyPlaced, v.Reason)
}

func TestEvaluateMinCGPA(t *testing.T) {
	w := testWindow(t, opening.EligibilityCriteria{MinCGPA: fptr(8.5)})

	v := Evaluate(Input{Student: testStudent(t), Window: w, Now: midWindow()})
	assert.False(t, v.Eligible)
	assert.Equal(t, "Minimum CGPA required is 8.5", v.Reason)
}

func TestEvaluateMaxBacklogs(t *testing.T) {
	w := testWindow(t, opening.EligibilityCriteria{MaxBacklogs: iptr(0)})
	s := testStudent(t)
	s.Backlogs = 2

	v := Evaluate(Input{Student: s, Window: w, Now: midWindow()})
	assert.False(t, v.Eligible)
	assert.Equal(t, "Maximum backlogs allowed is 0", v.Reason)
}

func TestEvaluateBranchRestriction(t *testing.T) {
	w := testWindow(t, opening.EligibilityCriteria{Branches: []shared.Branch{"CSE", "IT"}})
	s := testStudent(t)
	s.Branch = "ece"

	v := Evaluate(Input{Student: s, Window: w, Now: midWindow()})
	assert.False(t, v.Eligible)
	assert.Equal(t, "Branch ECE is not eligible", v.Reason)
}

func TestEvaluateBranchMatchIsCaseInsensitive(t *testing.T) {
	w := testWindow(t, opening.EligibilityCriteria{Branches: []shared.Branch{"cse"}})

	v := Evaluate(Input{Student: testStudent(t), Window: w, Now: midWindow()})
	assert.True(t, v.Eligible)
}

func TestEvaluatePassingYear(t *testing.T) {
	w := testWindow(t, opening.EligibilityCriteria{PassingYear: iptr(2027)})

	v := Evaluate(Input{Student: testStudent(t), Window: w, Now: midWindow()})
	assert.False(t, v.Eligible)
	assert.Equal(t, "Required passing year is 2027", v.Reason)
}

func TestEvaluateAlreadyApplied(t *testing.T) {
	w := testWindow(t, opening.EligibilityCriteria{})

	v := Evaluate(Input{Student: testStudent(t), Window: w, Now: midWindow(), AlreadyApplied: true})
	assert.False(t, v.Eligible)
	assert.Equal(t, ReasonAlreadyApplied, v.Reason)
}

// The student sees the first failing reason, so the check order is fixed:
// window, placed, CGPA, backlogs, branch, year, duplicate.
func TestEvaluateShortCircuitsInOrder(t *testing.T) {
	w := testWindow(t, opening.EligibilityCriteria{MinCGPA: fptr(9.5)})
	s := testStudent(t)
	s.Placed = true

	v := Evaluate(Input{Student: s, Window: w, Now: midWindow()})
	assert.Equal(t, ReasonAlreadyPlaced, v.Reason)

	v = Evaluate(Input{Student: s, Window: w, Now: timeutil.DateTime(2026, 1, 15, 12, 0, 0)})
	assert.Equal(t, ReasonWindowNotOpen, v.Reason)

	s.Placed = false
	v = Evaluate(Input{Student: s, Window: w, Now: midWindow(), AlreadyApplied: true})
	assert.Equal(t, "Minimum CGPA required is 9.5", v.Reason)
}

func TestForecastIgnoresAlreadyApplied(t *testing.T) {
	w := testWindow(t, opening.EligibilityCriteria{MinCGPA: fptr(7.0)})

	v := Forecast(testStudent(t), w, midWindow())
	assert.True(t, v.Eligible)
}
