package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/campus-placement-hub/internal/domain/application"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
)

func TestFinalizePlacement(t *testing.T) {
	students := newFakeStudentRepo()
	applications := newFakeApplicationRepo()
	events := &fakeEventPublisher{}
	handler := NewFinalizePlacementHandler(applications, students, nil, events)

	seedStudent(t, students, "stu-1")
	seedApplication(t, applications, "app-1", "stu-1", "op-1", application.StatusSelected)

	result, err := handler.Handle(context.Background(), FinalizePlacementCommand{ApplicationID: "app-1"})

	assert.NoError(t, err)
	assert.True(t, result.Placed)
	assert.Equal(t, "stu-1", result.StudentID)
	assert.Equal(t, "op-1", result.OpeningID)

	s, _ := students.GetByID(context.Background(), "stu-1")
	assert.True(t, s.Placed)
	assert.Equal(t, "op-1", s.PlacedOpeningID)
	assert.Equal(t, []shared.EventType{shared.EventStudentPlaced}, events.types())
}

func TestFinalizePlacementRequiresSelectedStatus(t *testing.T) {
	students := newFakeStudentRepo()
	applications := newFakeApplicationRepo()
	handler := NewFinalizePlacementHandler(applications, students, nil, &fakeEventPublisher{})

	seedStudent(t, students, "stu-1")
	seedApplication(t, applications, "app-1", "stu-1", "op-1", application.StatusShortlisted)

	_, err := handler.Handle(context.Background(), FinalizePlacementCommand{ApplicationID: "app-1"})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	s, _ := students.GetByID(context.Background(), "stu-1")
	assert.False(t, s.Placed)
}

func TestFinalizePlacementIdempotentRerun(t *testing.T) {
	students := newFakeStudentRepo()
	applications := newFakeApplicationRepo()
	events := &fakeEventPublisher{}
	handler := NewFinalizePlacementHandler(applications, students, nil, events)

	seedStudent(t, students, "stu-1")
	seedApplication(t, applications, "app-1", "stu-1", "op-1", application.StatusSelected)

	first, err := handler.Handle(context.Background(), FinalizePlacementCommand{ApplicationID: "app-1"})
	assert.NoError(t, err)
	assert.True(t, first.Placed)

	// Re-running the same placement reports success without rewriting.
	second, err := handler.Handle(context.Background(), FinalizePlacementCommand{ApplicationID: "app-1"})
	assert.NoError(t, err)
	assert.False(t, second.Placed)
	assert.Equal(t, first.PlacedAt.UTC(), second.PlacedAt.UTC())

	assert.Len(t, events.events, 1)
}

func TestFinalizePlacementCompetingOpeningFails(t *testing.T) {
	students := newFakeStudentRepo()
	applications := newFakeApplicationRepo()
	handler := NewFinalizePlacementHandler(applications, students, nil, &fakeEventPublisher{})

	seedStudent(t, students, "stu-1")
	seedApplication(t, applications, "app-1", "stu-1", "op-1", application.StatusSelected)
	seedApplication(t, applications, "app-2", "stu-1", "op-2", application.StatusSelected)

	_, err := handler.Handle(context.Background(), FinalizePlacementCommand{ApplicationID: "app-1"})
	assert.NoError(t, err)

	_, err = handler.Handle(context.Background(), FinalizePlacementCommand{ApplicationID: "app-2"})
	assert.ErrorIs(t, err, shared.ErrStudentAlreadyPlaced)

	s, _ := students.GetByID(context.Background(), "stu-1")
	assert.Equal(t, "op-1", s.PlacedOpeningID)
}
