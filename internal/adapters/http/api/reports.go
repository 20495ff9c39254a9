package api

import (
	"net/http"
	"strconv"

	"github.com/okian/scout/internal/domain/browse"
)

// ReportsHandler serves persisted reports grouped by player.
type ReportsHandler struct {
	deps ReportDependencies
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps ReportDependencies) *ReportsHandler {
	return &ReportsHandler{deps: deps}
}

type groupsResponse struct {
	Groups []browse.Group `json:"groups"`
	Total  int            `json:"total"`
}

// HandleList handles GET /reports?search=&position=.
func (h *ReportsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	groups := h.deps.Groups(browse.Filter{
		Search:     q.Get("search"),
		PositionID: q.Get("position"),
	})
	if groups == nil {
		groups = []browse.Group{}
	}
	writeJSON(w, http.StatusOK, groupsResponse{Groups: groups, Total: len(groups)})
}

// HandleGroup handles GET /reports/groups/{key...}.
func (h *ReportsHandler) HandleGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.deps.Group(r.PathValue("key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// HandleExportGroup handles GET /reports/export/{key...}.
func (h *ReportsHandler) HandleExportGroup(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.ExportGroup(r.Context(), r.PathValue("key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeFile(w, res)
}

// HandleEdit handles POST /reports/{id}/edit, opening the report as a draft.
func (h *ReportsHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	d, err := h.deps.OpenReport(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// HandleDelete handles DELETE /reports/{id}?confirm=true.
func (h *ReportsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err := h.deps.DeleteReport(r.Context(), r.PathValue("id"), confirmed); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
