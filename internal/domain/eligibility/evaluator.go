// Package eligibility implements the pure eligibility decision: given a
// student snapshot and an application window, admit or deny with a reason.
// Ineligibility is an expected outcome surfaced to the student, so the
// verdict carries a reason string instead of an error.
package eligibility

import (
	"fmt"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/student"
)

// Reason strings shown directly to students. Fixed-message reasons are
// constants; parameterized ones are built by the evaluator.
const (
	ReasonWindowNotOpen  = "window not open"
	ReasonAlreadyPlaced  = "already placed"
	ReasonAlreadyApplied = "already applied to this opening"
)

// Verdict is the result of one eligibility evaluation.
type Verdict struct {
	Eligible bool
	Reason   string
}

func admit() Verdict {
	return Verdict{Eligible: true}
}

func deny(reason string) Verdict {
	return Verdict{Eligible: false, Reason: reason}
}

// Input carries everything the evaluation reads. The evaluator itself does
// no I/O: the caller loads the window and the already-applied flag up front.
type Input struct {
	Student *student.Student
	Window  *opening.ApplicationWindow

	// Now is the evaluation instant, injected for determinism.
	Now time.Time

	// AlreadyApplied is true when an application for this student and the
	// window's opening already exists.
	AlreadyApplied bool
}

// Evaluate runs the checks in fixed order, short-circuiting on the first
// failure. The order is user-facing: the student sees the first reason that
// applies, so it must not change.
func Evaluate(in Input) Verdict {
	if in.Window == nil || !in.Window.IsOpenAt(in.Now) {
		return deny(ReasonWindowNotOpen)
	}

	if in.Student.Placed {
		return deny(ReasonAlreadyPlaced)
	}

	c := in.Window.Criteria

	if c.MinCGPA != nil && in.Student.CGPA.Float64() < *c.MinCGPA {
		return deny(fmt.Sprintf("Minimum CGPA required is %.1f", *c.MinCGPA))
	}

	if c.MaxBacklogs != nil && in.Student.Backlogs > *c.MaxBacklogs {
		return deny(fmt.Sprintf("Maximum backlogs allowed is %d", *c.MaxBacklogs))
	}

	if !c.AllowsBranch(in.Student.Branch) {
		return deny(fmt.Sprintf("Branch %s is not eligible", in.Student.Branch.Normalize()))
	}

	if c.PassingYear != nil && in.Student.BatchYear.Int() != *c.PassingYear {
		return deny(fmt.Sprintf("Required passing year is %d", *c.PassingYear))
	}

	if in.AlreadyApplied {
		return deny(ReasonAlreadyApplied)
	}

	return admit()
}

// Forecast evaluates a student against a window ignoring the already-applied
// check. Used by the eligible-count query, where holding an application does
// not make a student academically ineligible.
func Forecast(s *student.Student, w *opening.ApplicationWindow, now time.Time) Verdict {
	return Evaluate(Input{Student: s, Window: w, Now: now, AlreadyApplied: false})
}
