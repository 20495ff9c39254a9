package api

import (
	"net/http"

	"github.com/okian/scout/internal/domain/grading"
)

type competencyView struct {
	Name    string `json:"name"`
	Tooltip string `json:"tooltip,omitempty"`
}

type positionView struct {
	ID           string           `json:"id"`
	Label        string           `json:"label"`
	Abbreviation string           `json:"abbr"`
	Competencies []competencyView `json:"competencies"`
}

type gradeView struct {
	Grade   grading.Grade `json:"grade"`
	Color   string        `json:"color"`
	Percent int           `json:"percent"`
}

// PositionsHandler serves the static position table.
type PositionsHandler struct {
	body map[string]any
}

// NewPositionsHandler creates a new positions handler.
func NewPositionsHandler() *PositionsHandler {
	ps := grading.Positions()
	views := make([]positionView, 0, len(ps))
	for _, p := range ps {
		v := positionView{ID: p.ID, Label: p.Label, Abbreviation: p.Abbreviation}
		for _, c := range p.Competencies {
			v.Competencies = append(v.Competencies, competencyView{Name: c, Tooltip: grading.Tooltip(c)})
		}
		views = append(views, v)
	}
	grades := make([]gradeView, 0, len(grading.Grades))
	for _, g := range grading.Grades {
		grades = append(grades, gradeView{Grade: g, Color: g.Color(), Percent: g.Percent()})
	}
	return &PositionsHandler{body: map[string]any{"positions": views, "grades": grades}}
}

// HandleList handles GET /positions.
func (h *PositionsHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.body)
}
