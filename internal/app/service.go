// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/scout/internal/adapters/export"
	savequeue "github.com/okian/scout/internal/adapters/mq/queue"
	workerpool "github.com/okian/scout/internal/adapters/mq/worker"
	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/domain/autosave"
	"github.com/okian/scout/internal/domain/browse"
	"github.com/okian/scout/internal/domain/draft"
	"github.com/okian/scout/internal/domain/grading"
	"github.com/okian/scout/internal/domain/inflight"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// Connectivity describes the live subscription to the repository.
type Connectivity string

// Connectivity states.
const (
	Connecting Connectivity = "connecting"
	Connected  Connectivity = "ok"
	Failed     Connectivity = "error"
)

// Status is the read-only connectivity view.
type Status struct {
	Connectivity Connectivity `json:"connectivity"`
	Reports      int          `json:"reports"`
	LastSnapshot time.Time    `json:"lastSnapshot,omitempty"`
	LastError    string       `json:"lastError,omitempty"`
}

// flushTimeout bounds how long Stop waits for pending autosaves to be written.
const flushTimeout = 10 * time.Second

// queueDispatcher adapts the save queue to autosave.Dispatcher.
type queueDispatcher struct {
	queue savequeue.Queue
}

func (d *queueDispatcher) Dispatch(ctx context.Context, job model.SaveJob) bool {
	return d.queue.Enqueue(ctx, job)
}

// Service implements the scouting report workflow.
type Service struct {
	mu sync.RWMutex

	// Core components
	repo      repository.Repository
	drafts    *draft.Store
	guard     inflight.Guard
	saveQueue *savequeue.InMemoryQueue
	scheduler *autosave.Scheduler
	pool      *workerpool.Pool
	exporter  *export.Service

	// Configuration
	workerCount int
	queueSize   int
	debounce    time.Duration
	clock       autosave.Clock
	draftOpts   []draft.Option

	// Latest snapshot and connectivity, replaced wholesale on every delivery.
	snapMu  sync.RWMutex
	reports []model.Report
	status  Status

	// State
	started     bool
	unsubscribe func()

	// Logging
	logger logger.Logger
}

// New constructs a new Service. Drafts can be edited before Start; their
// writes wait in the queue until the workers run.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		debounce:    autosave.DefaultDebounce,
		clock:       autosave.WallClock(),
		status:      Status{Connectivity: Connecting},
		logger:      logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.repo == nil {
		s.repo = repository.NewMemoryStore(repository.WithLogger(s.logger))
	}
	if s.exporter == nil {
		s.exporter = export.NewService(export.WithLogger(s.logger))
	}

	s.drafts = draft.NewStore(append([]draft.Option{draft.WithLogger(s.logger)}, s.draftOpts...)...)
	s.guard = inflight.NewInMemoryGuard()
	s.saveQueue = savequeue.NewInMemoryQueue(savequeue.WithCapacity(s.queueSize))
	s.scheduler = autosave.New(s, &queueDispatcher{queue: s.saveQueue},
		autosave.WithDebounce(s.debounce),
		autosave.WithClock(s.clock),
		autosave.WithGuard(s.guard),
		autosave.WithLogger(s.logger.Named("autosave")),
	)
	s.pool = workerpool.NewPool(s.workerCount, s.saveQueue, s.scheduler,
		workerpool.WithLogger(s.logger.Named("save-worker")),
	)

	return s
}

// Start runs the save workers and subscribes to the repository.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting scouting service...")

	// Workers outlive ctx so Stop can drain pending writes.
	s.pool.Start(context.WithoutCancel(ctx))
	s.setConnectivity(Connecting, nil)
	s.unsubscribe = s.repo.Subscribe(ctx, s.onSnapshot, s.onSubscriptionError)

	s.started = true
	s.logger.Info(ctx, "scouting service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("debounce", s.debounce),
	)
	return nil
}

// Stop writes pending autosaves without waiting for their debounce, lets
// queued writes finish and closes the repository.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping scouting service...")

	flushCtx, cancel := context.WithTimeout(ctx, flushTimeout)
	if err := s.scheduler.Flush(flushCtx); err != nil {
		s.logger.Warn(ctx, "pending autosaves not written", logger.Error(err))
	}
	cancel()
	s.scheduler.Stop()
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "save workers did not drain", logger.Error(err))
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if err := s.repo.Close(); err != nil {
		s.logger.Warn(ctx, "closing repository failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "scouting service stopped")
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// onSnapshot replaces the cached list with the delivered one.
func (s *Service) onSnapshot(reports []model.Report) {
	s.snapMu.Lock()
	s.reports = reports
	s.status = Status{Connectivity: Connected, Reports: len(reports), LastSnapshot: time.Now()}
	s.snapMu.Unlock()

	metrics.RecordSnapshotDelivered()
	metrics.UpdateReportsTotal(len(reports))
	metrics.UpdateConnectivity(string(Connected))
}

func (s *Service) onSubscriptionError(err error) {
	s.setConnectivity(Failed, err)
	metrics.RecordSubscriptionError()
	s.logger.Warn(context.Background(), "report subscription failed", logger.Error(err))
}

func (s *Service) setConnectivity(c Connectivity, err error) {
	s.snapMu.Lock()
	s.status.Connectivity = c
	s.status.LastError = ""
	if err != nil {
		s.status.LastError = err.Error()
	}
	s.snapMu.Unlock()
	metrics.UpdateConnectivity(string(c))
}

// Status returns the current connectivity view.
func (s *Service) Status() Status {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.status
}

// Save writes the current content of a draft: a create when it has no remote
// id yet, an update otherwise. It is the autosave Saver and runs on a worker.
func (s *Service) Save(ctx context.Context, draftID string) error {
	d, ok := s.drafts.BeginSave(draftID)
	if !ok {
		s.logger.Debug(ctx, "draft removed before its write ran", logger.String("draft", draftID))
		return nil
	}

	start := time.Now()
	op := "update"
	remoteID := d.RemoteID
	var err error
	if remoteID == "" {
		op = "create"
		remoteID, err = s.repo.Create(ctx, d.Evaluation)
	} else {
		err = s.repo.Update(ctx, remoteID, d.Evaluation)
	}
	metrics.RecordWriteLatency(float64(time.Since(start).Microseconds()) / 1000)

	s.drafts.FinishSave(draftID, d.Revision, remoteID, err)
	if err != nil {
		metrics.RecordReportWrite(op, "error")
		s.logger.Warn(ctx, "report write failed",
			logger.String("draft", draftID),
			logger.String("op", op),
			logger.Error(err),
		)
		return fmt.Errorf("%s report for draft %s: %w", op, draftID, err)
	}

	metrics.RecordReportWrite(op, "ok")
	s.logger.Debug(ctx, "report written",
		logger.String("draft", draftID),
		logger.String("op", op),
		logger.String("report", remoteID),
		logger.Uint64("revision", d.Revision),
	)
	return nil
}

// NewDraft opens an empty draft and makes it active.
func (s *Service) NewDraft() model.Draft {
	d := s.drafts.New()
	s.scheduler.Touch(d.ID)
	return d
}

// Drafts lists open drafts in tab order.
func (s *Service) Drafts() []model.Draft {
	return s.drafts.List()
}

// Draft returns one open draft.
func (s *Service) Draft(id string) (model.Draft, error) {
	return s.drafts.Get(id)
}

// ActiveDraft returns the focused draft, if any.
func (s *Service) ActiveDraft() (model.Draft, bool) {
	return s.drafts.Active()
}

// ActivateDraft focuses a draft.
func (s *Service) ActivateDraft(id string) error {
	return s.drafts.Activate(id)
}

// RemoveDraft closes a draft tab. Its pending autosave is cancelled; a write
// already running completes. The persisted report is kept.
func (s *Service) RemoveDraft(id string) error {
	if err := s.drafts.Remove(id); err != nil {
		return err
	}
	s.scheduler.Forget(id)
	return nil
}

// SetField sets a text field or, for positionId, the position.
func (s *Service) SetField(id, field, value string) (model.Draft, error) {
	return s.touched(s.drafts.SetField(id, field, value))
}

// ToggleGrade selects a grade for a competency, or clears it when the same
// grade is already selected.
func (s *Service) ToggleGrade(id, competency, grade string) (model.Draft, error) {
	g, err := grading.ParseGrade(grade)
	if err != nil {
		return model.Draft{}, err
	}
	return s.touched(s.drafts.ToggleGrade(id, competency, g))
}

// SetNote sets the note of a competency.
func (s *Service) SetNote(id, competency, note string) (model.Draft, error) {
	return s.touched(s.drafts.SetNote(id, competency, note))
}

// AttachPhoto stores a photo on the draft. Photos are never persisted.
func (s *Service) AttachPhoto(id string, data []byte) (model.Draft, error) {
	return s.touched(s.drafts.AttachPhoto(id, data))
}

func (s *Service) touched(d model.Draft, err error) (model.Draft, error) {
	if err != nil {
		return model.Draft{}, err
	}
	s.scheduler.Touch(d.ID)
	return d, nil
}

// SaveNow writes a draft immediately. dispatched is false when a write for
// it is already running.
func (s *Service) SaveNow(ctx context.Context, id string) (dispatched bool, err error) {
	if !s.isStarted() {
		return false, ErrNotStarted
	}
	if _, err := s.drafts.Get(id); err != nil {
		return false, err
	}
	return s.scheduler.SaveNow(ctx, id)
}

// AutosaveState reports where a draft is in the autosave state machine.
func (s *Service) AutosaveState(id string) autosave.State {
	return s.scheduler.State(id)
}

// Reports returns the latest snapshot.
func (s *Service) Reports() []model.Report {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	out := make([]model.Report, len(s.reports))
	for i := range s.reports {
		out[i] = s.reports[i].Clone()
	}
	return out
}

// Groups returns the player-grouped index of the latest snapshot.
func (s *Service) Groups(f browse.Filter) []browse.Group {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return browse.Build(s.reports, f)
}

// Group returns every report about one player.
func (s *Service) Group(key string) (browse.Group, error) {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	g, ok := browse.Find(s.reports, key)
	if !ok {
		return browse.Group{}, fmt.Errorf("%w: %s", ErrGroupNotFound, key)
	}
	return g, nil
}

func (s *Service) report(id string) (model.Report, error) {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	for i := range s.reports {
		if s.reports[i].ID == id {
			return s.reports[i].Clone(), nil
		}
	}
	return model.Report{}, fmt.Errorf("%w: %s", ErrReportNotFound, id)
}

// OpenReport opens a persisted report as a new active draft.
func (s *Service) OpenReport(id string) (model.Draft, error) {
	if !s.isStarted() {
		return model.Draft{}, ErrNotStarted
	}
	r, err := s.report(id)
	if err != nil {
		return model.Draft{}, err
	}
	d := s.drafts.Open(r)
	s.scheduler.Touch(d.ID)
	return d, nil
}

// DeleteReport removes a persisted report. Nothing is sent to the repository
// unless confirmed is true.
func (s *Service) DeleteReport(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if !s.isStarted() {
		return ErrNotStarted
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		metrics.RecordReportWrite("delete", "error")
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	metrics.RecordReportWrite("delete", "ok")
	metrics.RecordReportDeleted()
	s.logger.Info(ctx, "report deleted", logger.String("report", id))
	return nil
}

// ExportGroup renders every report about one player, newest first.
func (s *Service) ExportGroup(ctx context.Context, key string) (*export.Result, error) {
	g, err := s.Group(key)
	if err != nil {
		return nil, err
	}
	entries := make([]export.Entry, len(g.Reports))
	for i := range g.Reports {
		entries[i] = export.Entry{Report: g.Reports[i]}
	}
	return s.export(ctx, "group", entries, export.GroupFilename(g.Name))
}

// ExportDrafts renders one draft, or every open draft when id is empty.
// Drafts are exported with their photos.
func (s *Service) ExportDrafts(ctx context.Context, id string) (*export.Result, error) {
	var drafts []model.Draft
	filename := export.AllDraftsFilename
	if id == "" {
		drafts = s.drafts.List()
	} else {
		d, err := s.drafts.Get(id)
		if err != nil {
			return nil, err
		}
		drafts = []model.Draft{d}
		filename = export.DraftFilename(d.Name)
	}

	entries := make([]export.Entry, len(drafts))
	for i := range drafts {
		entries[i] = export.Entry{
			Report: model.Report{ID: drafts[i].RemoteID, Evaluation: drafts[i].Evaluation},
			Photo:  drafts[i].Photo,
		}
	}
	return s.export(ctx, "drafts", entries, filename)
}

func (s *Service) export(ctx context.Context, kind string, entries []export.Entry, filename string) (*export.Result, error) {
	start := time.Now()
	res, err := s.exporter.Export(ctx, entries, filename)
	metrics.RecordExportLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		result := "error"
		if errors.Is(err, export.ErrPDFDependencyMissing) {
			result = "unavailable"
		}
		metrics.RecordExport(kind, result)
		return nil, err
	}
	metrics.RecordExport(kind, "ok")
	return res, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	status := s.Status()
	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.pool.Size(),
		"queueSize":     s.queueSize,
		"debounceMs":    s.debounce.Milliseconds(),
		"draftsOpen":    s.drafts.Len(),
		"pendingSaves":  s.scheduler.Pending(),
		"inFlightSaves": s.guard.Size(),
		"connectivity":  string(status.Connectivity),
		"reports":       status.Reports,
	}

	if s.started {
		queueLen := s.saveQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["savesProcessed"] = s.pool.Processed()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateDraftsOpen(s.drafts.Len())
		metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	}

	return stats
}
