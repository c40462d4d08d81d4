package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/pkg/timeutil"
)

func fptr(v float64) *float64 { return &v }

func seedOpening(t *testing.T, repo *fakeOpeningRepo, id, company string) *opening.Opening {
	o, err := opening.NewOpening(opening.NewOpeningParams{
		ID:        id,
		Company:   company,
		Role:      "SDE",
		Deadline:  timeutil.Now().AddDate(1, 0, 0),
		Positions: 2,
	}, timeutil.Now())
	assert.NoError(t, err)
	assert.NoError(t, repo.Create(context.Background(), o))
	return o
}

// seedWindow stores a window around the given day offsets, open all day.
func seedWindow(t *testing.T, repo *fakeWindowRepo, o *opening.Opening, id string, startOffset, endOffset int, criteria opening.EligibilityCriteria) *opening.ApplicationWindow {
	w, err := opening.NewWindow(opening.NewWindowParams{
		ID:        id,
		OpeningID: o.ID,
		StartDate: timeutil.Now().AddDate(0, 0, startOffset),
		StartTime: shared.TimeOfDay{Hour: 0, Minute: 0},
		EndDate:   timeutil.Now().AddDate(0, 0, endOffset),
		EndTime:   shared.TimeOfDay{Hour: 23, Minute: 59},
		Criteria:  criteria,
	}, o, timeutil.Now())
	assert.NoError(t, err)
	assert.NoError(t, repo.Create(context.Background(), w))
	return w
}

func TestOpenWindowsListsOnlyOpen(t *testing.T) {
	windows := newFakeWindowRepo()
	openings := newFakeOpeningRepo()
	handler := NewOpenWindowsHandler(windows, openings, nil, time.Minute)

	o := seedOpening(t, openings, "op-1", "Acme Corp")
	seedWindow(t, windows, o, "win-open", -1, 1, opening.EligibilityCriteria{MinCGPA: fptr(7.0)})
	seedWindow(t, windows, o, "win-upcoming", 5, 7, opening.EligibilityCriteria{})
	closed := seedWindow(t, windows, o, "win-inactive", -1, 1, opening.EligibilityCriteria{})
	closed.Deactivate()

	result, err := handler.Handle(context.Background(), OpenWindowsQuery{})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.TotalOpen)
	assert.Len(t, result.Windows, 1)
	assert.False(t, result.FromCache)
	assert.Equal(t, "win-open", result.Windows[0].WindowID)
	assert.Equal(t, "Acme Corp", result.Windows[0].Company)
	assert.Equal(t, 7.0, *result.Windows[0].MinCGPA)
}

func TestOpenWindowsSortsByClosingTime(t *testing.T) {
	windows := newFakeWindowRepo()
	openings := newFakeOpeningRepo()
	handler := NewOpenWindowsHandler(windows, openings, nil, time.Minute)

	o := seedOpening(t, openings, "op-1", "Acme Corp")
	seedWindow(t, windows, o, "win-late", -1, 5, opening.EligibilityCriteria{})
	seedWindow(t, windows, o, "win-soon", -1, 1, opening.EligibilityCriteria{})

	result, err := handler.Handle(context.Background(), OpenWindowsQuery{})

	assert.NoError(t, err)
	assert.Len(t, result.Windows, 2)
	assert.Equal(t, "win-soon", result.Windows[0].WindowID)
	assert.Equal(t, "win-late", result.Windows[1].WindowID)
}

func TestOpenWindowsFiltersByOpening(t *testing.T) {
	windows := newFakeWindowRepo()
	openings := newFakeOpeningRepo()
	handler := NewOpenWindowsHandler(windows, openings, nil, time.Minute)

	o1 := seedOpening(t, openings, "op-1", "Acme Corp")
	o2 := seedOpening(t, openings, "op-2", "Globex")
	seedWindow(t, windows, o1, "win-1", -1, 1, opening.EligibilityCriteria{})
	seedWindow(t, windows, o2, "win-2", -1, 1, opening.EligibilityCriteria{})

	result, err := handler.Handle(context.Background(), OpenWindowsQuery{OpeningID: "op-2"})

	assert.NoError(t, err)
	assert.Len(t, result.Windows, 1)
	assert.Equal(t, "win-2", result.Windows[0].WindowID)
	assert.Equal(t, "Globex", result.Windows[0].Company)
}

func TestOpenWindowsUsesCache(t *testing.T) {
	windows := newFakeWindowRepo()
	openings := newFakeOpeningRepo()
	cache := newFakeWindowCache()
	handler := NewOpenWindowsHandler(windows, openings, cache, time.Minute)

	o := seedOpening(t, openings, "op-1", "Acme Corp")
	seedWindow(t, windows, o, "win-1", -1, 1, opening.EligibilityCriteria{})

	first, err := handler.Handle(context.Background(), OpenWindowsQuery{})
	assert.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, 1, cache.setOpens)

	second, err := handler.Handle(context.Background(), OpenWindowsQuery{})
	assert.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 1, cache.setOpens)
	assert.Len(t, second.Windows, 1)
}

func TestOpenWindowsRechecksStaleCacheEntries(t *testing.T) {
	windows := newFakeWindowRepo()
	openings := newFakeOpeningRepo()
	cache := newFakeWindowCache()
	handler := NewOpenWindowsHandler(windows, openings, cache, time.Minute)

	o := seedOpening(t, openings, "op-1", "Acme Corp")
	w := seedWindow(t, windows, o, "win-1", -1, 1, opening.EligibilityCriteria{})

	// The cached ID set points at a window that closed meanwhile.
	cache.openIDs = []string{w.ID}
	cache.hasOpen = true
	w.Deactivate()

	result, err := handler.Handle(context.Background(), OpenWindowsQuery{})
	assert.NoError(t, err)
	assert.True(t, result.FromCache)
	assert.Empty(t, result.Windows)
}
