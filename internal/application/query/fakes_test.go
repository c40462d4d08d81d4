package query

// In-memory fakes for the read-side tests. They cover only what the query
// handlers touch, but implement the full repository contracts.

import (
	"context"
	"sort"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/application"
	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/internal/domain/student"
)

type fakeStudentRepo struct {
	students map[string]*student.Student
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[string]*student.Student)}
}

func (f *fakeStudentRepo) Create(_ context.Context, s *student.Student) error {
	f.students[s.ID] = s.Clone()
	return nil
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id string) (*student.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return s.Clone(), nil
}

func (f *fakeStudentRepo) GetByEmail(_ context.Context, email shared.Email) (*student.Student, error) {
	for _, s := range f.students {
		if s.Email == email {
			return s.Clone(), nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

func (f *fakeStudentRepo) Update(_ context.Context, s *student.Student) error {
	f.students[s.ID] = s.Clone()
	return nil
}

func (f *fakeStudentRepo) GetAll(_ context.Context, opts student.ListOptions) ([]*student.Student, error) {
	var out []*student.Student
	for _, s := range f.students {
		if !opts.IncludePlaced && s.Placed {
			continue
		}
		out = append(out, s.Clone())
	}
	return out, nil
}

func (f *fakeStudentRepo) GetByBatch(_ context.Context, year shared.BatchYear, opts student.ListOptions) ([]*student.Student, error) {
	var out []*student.Student
	for _, s := range f.students {
		if s.BatchYear == year && (opts.IncludePlaced || !s.Placed) {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (f *fakeStudentRepo) Count(_ context.Context) (int, error) {
	return len(f.students), nil
}

func (f *fakeStudentRepo) MarkPlaced(_ context.Context, studentID, openingID string, at time.Time) error {
	s, ok := f.students[studentID]
	if !ok {
		return shared.ErrStudentNotFound
	}
	if s.Placed {
		return shared.ErrStudentAlreadyPlaced
	}
	s.Placed = true
	s.PlacedOpeningID = openingID
	s.PlacedAt = at
	return nil
}

type fakeOpeningRepo struct {
	openings map[string]*opening.Opening
}

func newFakeOpeningRepo() *fakeOpeningRepo {
	return &fakeOpeningRepo{openings: make(map[string]*opening.Opening)}
}

func (f *fakeOpeningRepo) Create(_ context.Context, o *opening.Opening) error {
	f.openings[o.ID] = o
	return nil
}

func (f *fakeOpeningRepo) GetByID(_ context.Context, id string) (*opening.Opening, error) {
	o, ok := f.openings[id]
	if !ok {
		return nil, shared.ErrOpeningNotFound
	}
	return o, nil
}

func (f *fakeOpeningRepo) Update(_ context.Context, o *opening.Opening) error {
	f.openings[o.ID] = o
	return nil
}

func (f *fakeOpeningRepo) GetAll(_ context.Context, opts opening.ListOptions) ([]*opening.Opening, error) {
	var out []*opening.Opening
	for _, o := range f.openings {
		if opts.Status == "" || o.Status == opts.Status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOpeningRepo) GetActivePastDeadline(_ context.Context, before time.Time) ([]*opening.Opening, error) {
	var out []*opening.Opening
	for _, o := range f.openings {
		if o.Status == opening.StatusActive && o.Deadline.Before(before) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOpeningRepo) Count(_ context.Context, opts opening.ListOptions) (int64, error) {
	items, _ := f.GetAll(context.Background(), opts)
	return int64(len(items)), nil
}

type fakeWindowRepo struct {
	windows map[string]*opening.ApplicationWindow
}

func newFakeWindowRepo() *fakeWindowRepo {
	return &fakeWindowRepo{windows: make(map[string]*opening.ApplicationWindow)}
}

func (f *fakeWindowRepo) Create(_ context.Context, w *opening.ApplicationWindow) error {
	f.windows[w.ID] = w
	return nil
}

func (f *fakeWindowRepo) GetByID(_ context.Context, id string) (*opening.ApplicationWindow, error) {
	w, ok := f.windows[id]
	if !ok {
		return nil, shared.ErrWindowNotFound
	}
	return w, nil
}

func (f *fakeWindowRepo) Update(_ context.Context, w *opening.ApplicationWindow) error {
	f.windows[w.ID] = w
	return nil
}

func (f *fakeWindowRepo) GetByOpening(_ context.Context, openingID string) ([]*opening.ApplicationWindow, error) {
	var out []*opening.ApplicationWindow
	for _, w := range f.windows {
		if w.OpeningID == openingID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWindowRepo) GetActive(_ context.Context) ([]*opening.ApplicationWindow, error) {
	var out []*opening.ApplicationWindow
	for _, w := range f.windows {
		if w.Active {
			out = append(out, w)
		}
	}
	return out, nil
}

type fakeApplicationRepo struct {
	applications map[string]*application.Application
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{applications: make(map[string]*application.Application)}
}

func (f *fakeApplicationRepo) Create(_ context.Context, a *application.Application) error {
	f.applications[a.ID] = a.Clone()
	return nil
}

func (f *fakeApplicationRepo) GetByID(_ context.Context, id string) (*application.Application, error) {
	a, ok := f.applications[id]
	if !ok {
		return nil, shared.ErrApplicationNotFound
	}
	return a.Clone(), nil
}

func (f *fakeApplicationRepo) GetByStudentAndOpening(_ context.Context, studentID, openingID string) (*application.Application, error) {
	for _, a := range f.applications {
		if a.StudentID == studentID && a.OpeningID == openingID {
			return a.Clone(), nil
		}
	}
	return nil, shared.ErrApplicationNotFound
}

func (f *fakeApplicationRepo) Update(_ context.Context, a *application.Application) error {
	f.applications[a.ID] = a.Clone()
	return nil
}

func (f *fakeApplicationRepo) matching(openingID string, status application.Status) []*application.Application {
	var out []*application.Application
	for _, a := range f.applications {
		if a.OpeningID != openingID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeApplicationRepo) GetByOpening(_ context.Context, openingID string, opts application.ListOptions) ([]*application.Application, error) {
	out := f.matching(openingID, opts.Status)
	if opts.Offset >= len(out) {
		return nil, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (f *fakeApplicationRepo) GetByStudent(_ context.Context, studentID string) ([]*application.Application, error) {
	var out []*application.Application
	for _, a := range f.applications {
		if a.StudentID == studentID {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (f *fakeApplicationRepo) GetByOpeningAndRound(_ context.Context, openingID string, roundNumber int) ([]*application.Application, error) {
	var out []*application.Application
	for _, a := range f.applications {
		if a.OpeningID == openingID && a.RoundNumber == roundNumber {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (f *fakeApplicationRepo) ExistsByStudentAndOpening(_ context.Context, studentID, openingID string) (bool, error) {
	for _, a := range f.applications {
		if a.StudentID == studentID && a.OpeningID == openingID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApplicationRepo) CountByOpening(_ context.Context, openingID string, opts application.ListOptions) (int64, error) {
	return int64(len(f.matching(openingID, opts.Status))), nil
}

type fakeHistoryRepo struct {
	entries []*application.ReviewEntry
}

func (f *fakeHistoryRepo) Append(_ context.Context, e *application.ReviewEntry) error {
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeHistoryRepo) ListByApplication(_ context.Context, applicationID string) ([]*application.ReviewEntry, error) {
	var out []*application.ReviewEntry
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].ApplicationID == applicationID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

func (f *fakeHistoryRepo) ListByReviewer(_ context.Context, reviewerID string, limit int) ([]*application.ReviewEntry, error) {
	var out []*application.ReviewEntry
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if f.entries[i].ReviewerID == reviewerID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

// fakeWindowCache records hits so tests can assert cache behavior.
type fakeWindowCache struct {
	openIDs   []string
	hasOpen   bool
	counts    map[string]int64
	setCounts int
	setOpens  int
}

func newFakeWindowCache() *fakeWindowCache {
	return &fakeWindowCache{counts: make(map[string]int64)}
}

func (f *fakeWindowCache) GetOpenWindows(_ context.Context) ([]string, bool, error) {
	return f.openIDs, f.hasOpen, nil
}

func (f *fakeWindowCache) SetOpenWindows(_ context.Context, ids []string, _ time.Duration) error {
	f.openIDs = ids
	f.hasOpen = true
	f.setOpens++
	return nil
}

func (f *fakeWindowCache) GetEligibleCount(_ context.Context, windowID string) (int64, bool, error) {
	count, ok := f.counts[windowID]
	return count, ok, nil
}

func (f *fakeWindowCache) SetEligibleCount(_ context.Context, windowID string, count int64, _ time.Duration) error {
	f.counts[windowID] = count
	f.setCounts++
	return nil
}

func (f *fakeWindowCache) Invalidate(_ context.Context, windowID string) error {
	delete(f.counts, windowID)
	f.hasOpen = false
	f.openIDs = nil
	return nil
}
