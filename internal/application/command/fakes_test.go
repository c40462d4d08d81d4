package command

// In-memory fakes implementing the repository contracts, including the
// conditional-update semantics the handlers lean on (unique constraints,
// MarkPlaced and TryAddCandidate).

import (
	"context"
	"time"

	"github.com/campus-hub/campus-placement-hub/internal/domain/application"
	"github.com/campus-hub/campus-placement-hub/internal/domain/opening"
	"github.com/campus-hub/campus-placement-hub/internal/domain/round"
	"github.com/campus-hub/campus-placement-hub/internal/domain/shared"
	"github.com/campus-hub/campus-placement-hub/internal/domain/student"
)

// ─────────────────────────────────────────────────────────────────────────────
// Students
// ─────────────────────────────────────────────────────────────────────────────

type fakeStudentRepo struct {
	students map[string]*student.Student
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: make(map[string]*student.Student)}
}

func (f *fakeStudentRepo) Create(_ context.Context, s *student.Student) error {
	for _, existing := range f.students {
		if existing.Email == s.Email {
			return shared.ErrStudentAlreadyExists
		}
	}
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
	if _, ok := f.students[s.ID]; !ok {
		return shared.ErrStudentNotFound
	}
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
		if s.BatchYear != year {
			continue
		}
		if !opts.IncludePlaced && s.Placed {
			continue
		}
		out = append(out, s.Clone())
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

// ─────────────────────────────────────────────────────────────────────────────
// Openings and windows
// ─────────────────────────────────────────────────────────────────────────────

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
	copied := *o
	return &copied, nil
}

func (f *fakeOpeningRepo) Update(_ context.Context, o *opening.Opening) error {
	if _, ok := f.openings[o.ID]; !ok {
		return shared.ErrOpeningNotFound
	}
	copied := *o
	f.openings[o.ID] = &copied
	return nil
}

func (f *fakeOpeningRepo) GetAll(_ context.Context, opts opening.ListOptions) ([]*opening.Opening, error) {
	var out []*opening.Opening
	for _, o := range f.openings {
		if opts.Status != "" && o.Status != opts.Status {
			continue
		}
		copied := *o
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeOpeningRepo) GetActivePastDeadline(_ context.Context, before time.Time) ([]*opening.Opening, error) {
	var out []*opening.Opening
	for _, o := range f.openings {
		if o.Status == opening.StatusActive && o.Deadline.Before(before) {
			copied := *o
			out = append(out, &copied)
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
	if _, ok := f.windows[w.ID]; !ok {
		return shared.ErrWindowNotFound
	}
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

// ─────────────────────────────────────────────────────────────────────────────
// Applications and history
// ─────────────────────────────────────────────────────────────────────────────

type fakeApplicationRepo struct {
	applications map[string]*application.Application
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{applications: make(map[string]*application.Application)}
}

func (f *fakeApplicationRepo) Create(_ context.Context, a *application.Application) error {
	for _, existing := range f.applications {
		if existing.StudentID == a.StudentID && existing.OpeningID == a.OpeningID {
			return shared.ErrDuplicateApplication
		}
	}
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
	if _, ok := f.applications[a.ID]; !ok {
		return shared.ErrApplicationNotFound
	}
	f.applications[a.ID] = a.Clone()
	return nil
}

func (f *fakeApplicationRepo) GetByOpening(_ context.Context, openingID string, opts application.ListOptions) ([]*application.Application, error) {
	var out []*application.Application
	for _, a := range f.applications {
		if a.OpeningID != openingID {
			continue
		}
		if opts.Status != "" && a.Status != opts.Status {
			continue
		}
		out = append(out, a.Clone())
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
	items, _ := f.GetByOpening(context.Background(), openingID, opts)
	return int64(len(items)), nil
}

type fakeHistoryRepo struct {
	entries []*application.ReviewEntry
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
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

// ─────────────────────────────────────────────────────────────────────────────
// Rounds
// ─────────────────────────────────────────────────────────────────────────────

type fakeRoundRepo struct {
	rounds map[string]*round.Round
}

func newFakeRoundRepo() *fakeRoundRepo {
	return &fakeRoundRepo{rounds: make(map[string]*round.Round)}
}

func (f *fakeRoundRepo) Create(_ context.Context, r *round.Round) error {
	for _, existing := range f.rounds {
		if existing.OpeningID == r.OpeningID && existing.Number == r.Number {
			return shared.ErrRoundNumberTaken
		}
	}
	copied := *r
	f.rounds[r.ID] = &copied
	return nil
}

func (f *fakeRoundRepo) GetByID(_ context.Context, id string) (*round.Round, error) {
	r, ok := f.rounds[id]
	if !ok {
		return nil, shared.ErrRoundNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRoundRepo) GetByOpeningAndNumber(_ context.Context, openingID string, number int) (*round.Round, error) {
	for _, r := range f.rounds {
		if r.OpeningID == openingID && r.Number == number {
			copied := *r
			return &copied, nil
		}
	}
	return nil, shared.ErrRoundNotFound
}

func (f *fakeRoundRepo) GetByOpening(_ context.Context, openingID string) ([]*round.Round, error) {
	var out []*round.Round
	for _, r := range f.rounds {
		if r.OpeningID == openingID {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRoundRepo) MaxNumber(_ context.Context, openingID string) (int, error) {
	highest := 0
	for _, r := range f.rounds {
		if r.OpeningID == openingID && r.Number > highest {
			highest = r.Number
		}
	}
	return highest, nil
}

func (f *fakeRoundRepo) Update(_ context.Context, r *round.Round) error {
	if _, ok := f.rounds[r.ID]; !ok {
		return shared.ErrRoundNotFound
	}
	copied := *r
	f.rounds[r.ID] = &copied
	return nil
}

func (f *fakeRoundRepo) TryAddCandidate(_ context.Context, roundID string) error {
	r, ok := f.rounds[roundID]
	if !ok {
		return shared.ErrRoundNotFound
	}
	if r.Status.IsTerminal() {
		return shared.ErrRoundCompleted
	}
	if !r.HasCapacity() {
		return shared.ErrRoundFull
	}
	r.CurrentCandidates++
	return nil
}

func (f *fakeRoundRepo) RemoveCandidate(_ context.Context, roundID string) error {
	r, ok := f.rounds[roundID]
	if !ok {
		return shared.ErrRoundNotFound
	}
	if r.CurrentCandidates > 0 {
		r.CurrentCandidates--
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Events
// ─────────────────────────────────────────────────────────────────────────────

type fakeEventPublisher struct {
	events []shared.Event
}

func (f *fakeEventPublisher) Publish(event shared.Event) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventPublisher) types() []shared.EventType {
	var out []shared.EventType
	for _, e := range f.events {
		out = append(out, e.EventType())
	}
	return out
}
