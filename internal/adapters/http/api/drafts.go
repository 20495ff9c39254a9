package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/okian/scout/internal/domain/autosave"
	"github.com/okian/scout/internal/domain/grading"
	"github.com/okian/scout/internal/domain/model"
)

// draftView is a draft plus the values derived from it.
type draftView struct {
	model.Draft
	Overall  grading.Grade  `json:"overall,omitempty"`
	Graded   int            `json:"graded"`
	Total    int            `json:"total"`
	Autosave autosave.State `json:"autosave"`
	HasPhoto bool           `json:"hasPhoto"`
	Active   bool           `json:"active"`
}

// DraftsHandler serves the draft tabs.
type DraftsHandler struct {
	deps     DraftDependencies
	validate *validator.Validate
}

// NewDraftsHandler creates a new drafts handler.
func NewDraftsHandler(deps DraftDependencies) *DraftsHandler {
	return &DraftsHandler{deps: deps, validate: newValidator()}
}

func (h *DraftsHandler) view(d model.Draft) draftView {
	v := draftView{
		Draft:    d,
		Autosave: h.deps.AutosaveState(d.ID),
		HasPhoto: d.HasPhoto(),
	}
	if g, ok := d.Overall(); ok {
		v.Overall = g
	}
	v.Graded, v.Total = grading.GradedCount(d.Ratings, d.PositionID)
	if active, ok := h.deps.ActiveDraft(); ok && active.ID == d.ID {
		v.Active = true
	}
	return v
}

// HandleList handles GET /drafts.
func (h *DraftsHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	drafts := h.deps.Drafts()
	out := make([]draftView, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, h.view(d))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /drafts.
func (h *DraftsHandler) HandleCreate(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, h.view(h.deps.NewDraft()))
}

// HandleGet handles GET /drafts/{id}.
func (h *DraftsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.deps.Draft(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(d))
}

// HandleRemove handles DELETE /drafts/{id}. Only the local tab is closed.
func (h *DraftsHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.RemoveDraft(r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleActivate handles POST /drafts/{id}/activate.
func (h *DraftsHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.deps.ActivateDraft(id); err != nil {
		writeDomainError(w, err)
		return
	}
	h.HandleGet(w, r)
}

// HandleSetField handles PATCH /drafts/{id}.
func (h *DraftsHandler) HandleSetField(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := decode(w, r, h.validate, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	h.respond(w)(h.deps.SetField(r.PathValue("id"), req.Field, req.Value))
}

// HandleToggleGrade handles POST /drafts/{id}/grades.
func (h *DraftsHandler) HandleToggleGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := decode(w, r, h.validate, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	h.respond(w)(h.deps.ToggleGrade(r.PathValue("id"), req.Competency, req.Grade))
}

// HandleSetNote handles PUT /drafts/{id}/notes.
func (h *DraftsHandler) HandleSetNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decode(w, r, h.validate, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	h.respond(w)(h.deps.SetNote(r.PathValue("id"), req.Competency, req.Note))
}

// HandleAttachPhoto handles PUT /drafts/{id}/photo with the raw image as body.
func (h *DraftsHandler) HandleAttachPhoto(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPhotoBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
		return
	}
	if len(data) == 0 {
		writeDomainError(w, badRequest("photo", errors.New("empty body")))
		return
	}
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		writeDomainError(w, badRequest("photo", errors.New("not an image: "+ct)))
		return
	}
	h.respond(w)(h.deps.AttachPhoto(r.PathValue("id"), data))
}

// HandleSave handles POST /drafts/{id}/save.
func (h *DraftsHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	dispatched, err := h.deps.SaveNow(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !dispatched {
		writeError(w, http.StatusConflict, "save_in_flight", errors.New("a save for this draft is already running"))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"id": id, "dispatched": true})
}

// HandleExport handles GET /drafts/export. Without ?id all drafts are exported.
func (h *DraftsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.ExportDrafts(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeFile(w, res)
}

func (h *DraftsHandler) respond(w http.ResponseWriter) func(model.Draft, error) {
	return func(d model.Draft, err error) {
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, h.view(d))
	}
}
