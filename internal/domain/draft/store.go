// Package draft keeps the set of open drafts (tabs) and their dirty state.
//
// Drafts are values: every mutation builds a fresh copy of the targeted
// entry, bumps its revision and forces it back to unsaved. Readers always
// receive copies.
package draft

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/scout/internal/domain/grading"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// Store holds open drafts in creation order plus the active one.
type Store struct {
	mu     sync.RWMutex
	drafts []model.Draft
	active string

	newID  func() string
	now    func() time.Time
	logger logger.Logger
}

// NewStore creates an empty draft store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		newID:  uuid.NewString,
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New opens an empty draft dated today and makes it active.
func (s *Store) New() model.Draft {
	d := model.Draft{
		ID: s.newID(),
		Evaluation: model.Evaluation{
			Ratings:         map[string]model.Rating{},
			ObservationDate: model.FormatDate(s.now()),
		},
		State: model.StateUnsaved,
	}
	return s.add(d)
}

// Open starts a new draft from a persisted report. The draft gets its own
// transient id and no photo, and keeps the report's remote id so its writes
// update that record.
func (s *Store) Open(r model.Report) model.Draft {
	d := model.Draft{
		ID:         s.newID(),
		RemoteID:   r.ID,
		Evaluation: r.Evaluation.Clone(),
		State:      model.StateUnsaved,
	}
	return s.add(d)
}

func (s *Store) add(d model.Draft) model.Draft {
	s.mu.Lock()
	s.drafts = append(s.drafts, d)
	s.active = d.ID
	n := len(s.drafts)
	s.mu.Unlock()

	metrics.UpdateDraftsOpen(n)
	s.logger.Debug(context.Background(), "draft opened",
		logger.String("draft", d.ID),
		logger.String("remote_id", d.RemoteID),
	)
	return d.Clone()
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.drafts, func(d model.Draft) bool { return d.ID == id })
}

// Get returns a copy of the draft.
func (s *Store) Get(id string) (model.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Draft{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.drafts[i].Clone(), nil
}

// List returns copies of all drafts in tab order.
func (s *Store) List() []model.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Draft, len(s.drafts))
	for i, d := range s.drafts {
		out[i] = d.Clone()
	}
	return out
}

// Len returns the number of open drafts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

// Active returns the focused draft, if any.
func (s *Store) Active() (model.Draft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(s.active); i >= 0 {
		return s.drafts[i].Clone(), true
	}
	return model.Draft{}, false
}

// Activate focuses a draft.
func (s *Store) Activate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.active = id
	return nil
}

// Remove closes a draft. If it was active, the most recently added remaining
// draft becomes active, or none when the set is empty. The remote record is
// left alone.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.drafts = slices.Delete(s.drafts, i, i+1)
	if s.active == id {
		s.active = ""
		if n := len(s.drafts); n > 0 {
			s.active = s.drafts[n-1].ID
		}
	}
	n := len(s.drafts)
	s.mu.Unlock()

	metrics.UpdateDraftsOpen(n)
	s.logger.Debug(context.Background(), "draft removed", logger.String("draft", id))
	return nil
}

// mutate replaces one draft with an edited copy, bumping its revision and
// marking it unsaved whatever its previous state.
func (s *Store) mutate(id, op string, edit func(d *model.Draft) error) (model.Draft, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Draft{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := s.drafts[i].Clone()
	if err := edit(&next); err != nil {
		s.mu.Unlock()
		return model.Draft{}, err
	}
	next.Revision++
	next.State = model.StateUnsaved
	s.drafts[i] = next
	s.mu.Unlock()

	metrics.RecordDraftMutation(op)
	return next.Clone(), nil
}

// SetField assigns a field by its JSON name. positionId is routed to
// SetPosition.
func (s *Store) SetField(id, field, value string) (model.Draft, error) {
	if field == model.FieldPosition {
		return s.SetPosition(id, value)
	}
	if !model.IsTextField(field) {
		return model.Draft{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return s.mutate(id, "set_field", func(d *model.Draft) error {
		d.SetText(field, value)
		return nil
	})
}

// SetPosition changes the position and clears every rating, since the old
// ratings belong to another competency list. An empty id unsets the position.
func (s *Store) SetPosition(id, positionID string) (model.Draft, error) {
	if _, ok := grading.Lookup(positionID); positionID != "" && !ok {
		return model.Draft{}, fmt.Errorf("%w: %q", ErrUnknownPosition, positionID)
	}
	return s.mutate(id, "set_position", func(d *model.Draft) error {
		d.PositionID = positionID
		d.Ratings = map[string]model.Rating{}
		return nil
	})
}

// ToggleGrade selects a grade for a competency, or clears it when the same
// grade is already selected. The note is kept.
func (s *Store) ToggleGrade(id, competency string, g grading.Grade) (model.Draft, error) {
	if !g.Valid() {
		return model.Draft{}, fmt.Errorf("%w: %q", grading.ErrInvalidGrade, g)
	}
	return s.mutate(id, "toggle_grade", func(d *model.Draft) error {
		if !grading.HasCompetency(d.PositionID, competency) {
			return fmt.Errorf("%w: %q", ErrUnknownCompetency, competency)
		}
		r := d.Ratings[competency]
		if r.Grade == g {
			r.Grade = grading.None
		} else {
			r.Grade = g
		}
		d.Ratings[competency] = r
		return nil
	})
}

// SetNote sets the free-text note of a competency, keeping its grade.
func (s *Store) SetNote(id, competency, note string) (model.Draft, error) {
	return s.mutate(id, "set_note", func(d *model.Draft) error {
		if !grading.HasCompetency(d.PositionID, competency) {
			return fmt.Errorf("%w: %q", ErrUnknownCompetency, competency)
		}
		r := d.Ratings[competency]
		r.Note = note
		d.Ratings[competency] = r
		return nil
	})
}

// AttachPhoto replaces the draft's photo. The photo never leaves the process
// through the repository; it is only used for exports.
func (s *Store) AttachPhoto(id string, data []byte) (model.Draft, error) {
	return s.mutate(id, "attach_photo", func(d *model.Draft) error {
		d.Photo = append([]byte(nil), data...)
		return nil
	})
}

// BeginSave marks the draft as saving and returns the copy to persist.
// ok is false when the draft no longer exists.
func (s *Store) BeginSave(id string) (model.Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Draft{}, false
	}
	next := s.drafts[i].Clone()
	next.State = model.StateSaving
	s.drafts[i] = next
	return next.Clone(), true
}

// FinishSave records the outcome of a write of the given revision. The remote
// id is recorded on the first success. The state becomes saved or error only
// if no edit happened since the write began, so a newer unsaved edit is never
// downgraded. ok is false when the draft was removed meanwhile.
func (s *Store) FinishSave(id string, revision uint64, remoteID string, saveErr error) (model.Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Draft{}, false
	}
	next := s.drafts[i].Clone()
	if saveErr == nil && remoteID != "" && next.RemoteID == "" {
		next.RemoteID = remoteID
	}
	if next.Revision == revision {
		if saveErr != nil {
			next.State = model.StateError
		} else {
			next.State = model.StateSaved
		}
	}
	s.drafts[i] = next
	return next.Clone(), true
}
