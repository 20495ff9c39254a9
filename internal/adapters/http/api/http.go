// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/scout/internal/adapters/export"
	"github.com/okian/scout/internal/adapters/repository"
	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/autosave"
	"github.com/okian/scout/internal/domain/browse"
	"github.com/okian/scout/internal/domain/draft"
	"github.com/okian/scout/internal/domain/grading"
	"github.com/okian/scout/internal/domain/model"
)

// DraftDependencies covers the draft tab operations.
type DraftDependencies interface {
	NewDraft() model.Draft
	Drafts() []model.Draft
	Draft(id string) (model.Draft, error)
	ActiveDraft() (model.Draft, bool)
	ActivateDraft(id string) error
	RemoveDraft(id string) error
	SetField(id, field, value string) (model.Draft, error)
	ToggleGrade(id, competency, grade string) (model.Draft, error)
	SetNote(id, competency, note string) (model.Draft, error)
	AttachPhoto(id string, data []byte) (model.Draft, error)
	SaveNow(ctx context.Context, id string) (bool, error)
	AutosaveState(id string) autosave.State
	ExportDrafts(ctx context.Context, id string) (*export.Result, error)
}

// ReportDependencies covers the persisted report views.
type ReportDependencies interface {
	Groups(f browse.Filter) []browse.Group
	Group(key string) (browse.Group, error)
	OpenReport(id string) (model.Draft, error)
	DeleteReport(ctx context.Context, id string, confirmed bool) error
	ExportGroup(ctx context.Context, key string) (*export.Result, error)
	Status() service.Status
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	DraftDependencies
	ReportDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	monitorHandler   *MonitorHandler
	positionsHandler *PositionsHandler
	draftsHandler    *DraftsHandler
	reportsHandler   *ReportsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		monitorHandler:   NewMonitorHandler(deps, deps),
		positionsHandler: NewPositionsHandler(),
		draftsHandler:    NewDraftsHandler(deps),
		reportsHandler:   NewReportsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.monitorHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.monitorHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /status", MetricsMiddleware(s.monitorHandler.HandleStatus, "status"))
	mux.HandleFunc("GET /positions", MetricsMiddleware(s.positionsHandler.HandleList, "positions"))

	d := s.draftsHandler
	mux.HandleFunc("GET /drafts", MetricsMiddleware(d.HandleList, "drafts"))
	mux.HandleFunc("POST /drafts", MetricsMiddleware(d.HandleCreate, "drafts"))
	mux.HandleFunc("GET /drafts/export", MetricsMiddleware(d.HandleExport, "drafts_export"))
	mux.HandleFunc("GET /drafts/{id}", MetricsMiddleware(d.HandleGet, "draft"))
	mux.HandleFunc("DELETE /drafts/{id}", MetricsMiddleware(d.HandleRemove, "draft"))
	mux.HandleFunc("PATCH /drafts/{id}", MetricsMiddleware(d.HandleSetField, "draft"))
	mux.HandleFunc("POST /drafts/{id}/activate", MetricsMiddleware(d.HandleActivate, "draft_activate"))
	mux.HandleFunc("POST /drafts/{id}/grades", MetricsMiddleware(d.HandleToggleGrade, "draft_grades"))
	mux.HandleFunc("PUT /drafts/{id}/notes", MetricsMiddleware(d.HandleSetNote, "draft_notes"))
	mux.HandleFunc("PUT /drafts/{id}/photo", MetricsMiddleware(d.HandleAttachPhoto, "draft_photo"))
	mux.HandleFunc("POST /drafts/{id}/save", MetricsMiddleware(d.HandleSave, "draft_save"))

	rp := s.reportsHandler
	mux.HandleFunc("GET /reports", MetricsMiddleware(rp.HandleList, "reports"))
	// Group keys are player names and may contain "/", so they take the rest of the path.
	mux.HandleFunc("GET /reports/groups/{key...}", MetricsMiddleware(rp.HandleGroup, "report_group"))
	mux.HandleFunc("GET /reports/export/{key...}", MetricsMiddleware(rp.HandleExportGroup, "report_group_export"))
	mux.HandleFunc("POST /reports/{id}/edit", MetricsMiddleware(rp.HandleEdit, "report_edit"))
	mux.HandleFunc("DELETE /reports/{id}", MetricsMiddleware(rp.HandleDelete, "report"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps upstream sentinel errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, draft.ErrNotFound),
		errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrReportNotFound),
		errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, draft.ErrUnknownCompetency),
		errors.Is(err, draft.ErrUnknownField),
		errors.Is(err, draft.ErrUnknownPosition),
		errors.Is(err, grading.ErrInvalidGrade),
		errors.Is(err, export.ErrNothingToExport):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrNotConfirmed):
		writeError(w, http.StatusPreconditionRequired, "confirmation_required", err)
	case errors.Is(err, autosave.ErrDispatchRejected):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, export.ErrPDFDependencyMissing):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func writeFile(w http.ResponseWriter, res *export.Result) {
	w.Header().Set("Content-Type", res.MimeType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}
