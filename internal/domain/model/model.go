// Package model contains domain models passed between layers.
package model

import (
	"maps"
	"time"

	"github.com/okian/scout/internal/domain/grading"
)

// DateLayout is the dd/mm/yyyy layout used for observation dates.
const DateLayout = "02/01/2006"

// Rating is the grade and note given to one competency.
type Rating = grading.Rating

// Evaluation is the content shared by drafts and persisted reports.
// Free-text fields are kept as typed by the scout.
type Evaluation struct {
	Name             string            `json:"name"`
	Age              string            `json:"age"`
	Nationality      string            `json:"nationality"`
	Club             string            `json:"club"`
	PositionID       string            `json:"positionId"`
	SpecificPosition string            `json:"specificPosition"`
	Foot             string            `json:"foot"`
	JerseyNumber     string            `json:"jerseyNumber"`
	MatchObserved    string            `json:"matchObserved"`
	Summary          string            `json:"summary"`
	Ratings          map[string]Rating `json:"ratings"`
	ObservationDate  string            `json:"observationDate"`
}

// Clone returns a deep copy; the ratings map is never shared.
func (e Evaluation) Clone() Evaluation {
	e.Ratings = maps.Clone(e.Ratings)
	if e.Ratings == nil {
		e.Ratings = map[string]Rating{}
	}
	return e
}

// Overall is the aggregated grade for the evaluation's position.
func (e Evaluation) Overall() (grading.Grade, bool) {
	return grading.OverallGrade(e.Ratings, e.PositionID)
}

// Settable text fields by their JSON name. positionId is excluded because
// changing it also resets the ratings; observationDate is fixed at creation.
var textFields = map[string]func(*Evaluation) *string{ //nolint:gochecknoglobals // static field table
	"name":             func(e *Evaluation) *string { return &e.Name },
	"age":              func(e *Evaluation) *string { return &e.Age },
	"nationality":      func(e *Evaluation) *string { return &e.Nationality },
	"club":             func(e *Evaluation) *string { return &e.Club },
	"specificPosition": func(e *Evaluation) *string { return &e.SpecificPosition },
	"foot":             func(e *Evaluation) *string { return &e.Foot },
	"jerseyNumber":     func(e *Evaluation) *string { return &e.JerseyNumber },
	"matchObserved":    func(e *Evaluation) *string { return &e.MatchObserved },
	"summary":          func(e *Evaluation) *string { return &e.Summary },
}

// FieldPosition is the JSON name of the position field.
const FieldPosition = "positionId"

// IsTextField reports whether name is a settable text field.
func IsTextField(name string) bool {
	_, ok := textFields[name]
	return ok
}

// SetText assigns a text field by JSON name. It returns false for unknown names.
func (e *Evaluation) SetText(field, value string) bool {
	ptr, ok := textFields[field]
	if !ok {
		return false
	}
	*ptr(e) = value
	return true
}

// FormatDate renders t as an observation date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Report is a persisted evaluation. CreatedAt is in seconds; 0 means the
// backend did not record it.
type Report struct {
	ID string `json:"id"`
	Evaluation
	CreatedAt int64 `json:"creationTimestamp"`
}

// Clone returns a deep copy of the report.
func (r Report) Clone() Report {
	r.Evaluation = r.Evaluation.Clone()
	return r
}

// SaveState tracks a draft's relationship with its persisted copy.
type SaveState string

// Draft save states.
const (
	StateUnsaved SaveState = "unsaved"
	StateSaving  SaveState = "saving"
	StateSaved   SaveState = "saved"
	StateError   SaveState = "error"
)

// Draft is a locally edited evaluation. ID is transient and never persisted;
// RemoteID is set once the draft has been written (or when it was opened
// from a report). Revision increases on every edit.
type Draft struct {
	ID       string `json:"id"`
	RemoteID string `json:"remoteId,omitempty"`
	Evaluation
	Photo    []byte    `json:"-"`
	State    SaveState `json:"state"`
	Revision uint64    `json:"revision"`
}

// Clone returns a deep copy of the draft.
func (d Draft) Clone() Draft {
	d.Evaluation = d.Evaluation.Clone()
	if d.Photo != nil {
		d.Photo = append([]byte(nil), d.Photo...)
	}
	return d
}

// HasPhoto reports whether a photo is attached.
func (d Draft) HasPhoto() bool { return len(d.Photo) > 0 }
