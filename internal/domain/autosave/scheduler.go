// Package autosave debounces draft edits into remote writes.
//
// Each draft id moves through idle, pending (a debounce timer is armed) and
// in-flight (a write holds the single-flight lock). Edits re-arm the timer;
// a fire or a manual save acquires the lock and hands a job to the
// dispatcher; the job's completion releases it. Failed writes are not
// retried automatically. Flush writes whatever is still pending at shutdown.
package autosave

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/scout/internal/domain/inflight"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// DefaultDebounce is the quiet period after the last edit before a write.
const DefaultDebounce = 1800 * time.Millisecond

const flushPollInterval = 5 * time.Millisecond

// State is the scheduler's view of one draft.
type State string

// Scheduler states.
const (
	StateIdle     State = "idle"
	StatePending  State = "pending"
	StateInFlight State = "in-flight"
)

// Saver performs one write of the current content of a draft.
type Saver interface {
	Save(ctx context.Context, draftID string) error
}

// Dispatcher hands a save job to whatever executes it. It returns false when
// the job could not be accepted.
type Dispatcher interface {
	Dispatch(ctx context.Context, job model.SaveJob) bool
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(ctx context.Context, job model.SaveJob) bool

// Dispatch calls f.
func (f DispatchFunc) Dispatch(ctx context.Context, job model.SaveJob) bool { return f(ctx, job) }

type entry struct {
	timer Timer
	seq   uint64 // identifies the armed timer; stale fires are ignored
	// deferred is set when a timer fired during an in-flight write. The
	// completion of that write then re-arms a full debounce window.
	deferred bool
	// ready marks a write that is due now because the scheduler is flushing.
	ready bool
}

// Scheduler runs the per-draft autosave state machine.
type Scheduler struct {
	mu       sync.Mutex
	entries  map[string]*entry
	seq      uint64
	stopped  bool
	flushing bool

	saver      Saver
	dispatcher Dispatcher
	guard      inflight.Guard
	clock      Clock
	debounce   time.Duration
	logger     logger.Logger
}

// New creates a scheduler that writes through saver and hands jobs to dispatcher.
func New(saver Saver, dispatcher Dispatcher, opts ...Option) *Scheduler {
	s := &Scheduler{
		entries:    make(map[string]*entry),
		saver:      saver,
		dispatcher: dispatcher,
		guard:      inflight.NewInMemoryGuard(),
		clock:      WallClock(),
		debounce:   DefaultDebounce,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Debounce returns the configured quiet period.
func (s *Scheduler) Debounce() time.Duration { return s.debounce }

// Touch records an edit: it cancels any pending timer for the draft and arms
// a new one.
func (s *Scheduler) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.armLocked(id)
	metrics.RecordAutosaveScheduled()
}

func (s *Scheduler) armLocked(id string) {
	e := s.entries[id]
	if e == nil {
		e = &entry{}
		s.entries[id] = e
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if s.flushing {
		e.ready = true
		return
	}
	s.seq++
	seq := s.seq
	e.seq = seq
	e.timer = s.clock.AfterFunc(s.debounce, func() { s.fire(id, seq) })
}

func (s *Scheduler) fire(id string, seq uint64) {
	ctx := context.Background()

	s.mu.Lock()
	e := s.entries[id]
	if e == nil || e.seq != seq || s.stopped {
		s.mu.Unlock()
		return
	}
	e.timer = nil
	if !s.guard.Acquire(ctx, id) {
		e.deferred = true
		s.mu.Unlock()
		metrics.RecordAutosaveSkipped()
		s.logger.Debug(ctx, "write in flight, deferring autosave", logger.String("draft", id))
		return
	}
	s.mu.Unlock()

	_ = s.dispatch(ctx, id, model.TriggerDebounce)
}

// SaveNow cancels the pending timer and dispatches a write immediately.
// It returns false without error when a write is already in flight.
func (s *Scheduler) SaveNow(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false, nil
	}
	if !s.guard.Acquire(ctx, id) {
		s.mu.Unlock()
		metrics.RecordAutosaveSkipped()
		s.logger.Debug(ctx, "manual save ignored, write in flight", logger.String("draft", id))
		return false, nil
	}
	if e := s.entries[id]; e != nil {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
		e.seq = 0
		e.deferred = false
		e.ready = false
	}
	s.mu.Unlock()

	if err := s.dispatch(ctx, id, model.TriggerManual); err != nil {
		return false, err
	}
	return true, nil
}

// dispatch is called with the draft's lock held and no scheduler mutex.
func (s *Scheduler) dispatch(ctx context.Context, id, trigger string) error {
	job := model.SaveJob{DraftID: id, Trigger: trigger, Enqueued: time.Now()}
	if s.dispatcher.Dispatch(ctx, job) {
		metrics.RecordAutosaveDispatched(trigger)
		return nil
	}

	// Nothing will run the job: free the lock and try again after a window.
	s.guard.Release(ctx, id)
	s.mu.Lock()
	if !s.stopped {
		s.armLocked(id)
	}
	s.mu.Unlock()
	metrics.RecordErrorByComponent("autosave", "dispatch_rejected")
	s.logger.Warn(ctx, "save job rejected, rescheduled",
		logger.String("draft", id),
		logger.String("trigger", trigger),
	)
	return fmt.Errorf("%w: draft %s", ErrDispatchRejected, id)
}

// Execute runs a dispatched job: one write through the Saver, then the lock
// is released. Workers call it; the returned error is the write's error.
func (s *Scheduler) Execute(ctx context.Context, job model.SaveJob) error {
	err := s.saver.Save(ctx, job.DraftID)
	s.complete(ctx, job.DraftID)
	return err
}

func (s *Scheduler) complete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.guard.Release(ctx, id)
	e := s.entries[id]
	if e == nil {
		return
	}
	if e.deferred {
		e.deferred = false
		if e.timer == nil && !s.stopped {
			s.armLocked(id)
			return
		}
	}
	if e.timer == nil && !e.ready {
		delete(s.entries, id)
	}
}

// Forget cancels the pending timer of a removed draft. A write already in
// flight still runs to completion.
func (s *Scheduler) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.entries[id]; e != nil {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(s.entries, id)
	}
}

// State reports where a draft is in the state machine.
func (s *Scheduler) State(id string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.guard.Held(id) {
		return StateInFlight
	}
	if e := s.entries[id]; e != nil && (e.timer != nil || e.ready) {
		return StatePending
	}
	return StateIdle
}

// Pending returns the number of drafts with a write waiting to be dispatched.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.timer != nil || e.ready {
			n++
		}
	}
	return n
}

// Flush writes every pending draft now instead of waiting for its timer and
// returns once nothing is pending or in flight. Edits made while flushing are
// written immediately. Workers must still be consuming jobs.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	s.flushing = true
	s.mu.Unlock()

	ticker := time.NewTicker(flushPollInterval)
	defer ticker.Stop()
	for {
		due, busy := s.takeDue()
		for _, id := range due {
			s.flushOne(ctx, id)
		}
		if !busy {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("flush autosaves: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// takeDue turns armed timers into due writes and lists the due drafts that
// are not in flight. busy is false once nothing is due or in flight.
func (s *Scheduler) takeDue() (due []string, busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
			e.seq = 0
			e.ready = true
		}
		if e.ready || e.deferred {
			busy = true
		}
		if e.ready && !s.guard.Held(id) {
			due = append(due, id)
		}
	}
	return due, busy || s.guard.Size() > 0
}

func (s *Scheduler) flushOne(ctx context.Context, id string) {
	s.mu.Lock()
	e := s.entries[id]
	if e == nil || !e.ready || s.stopped || !s.guard.Acquire(ctx, id) {
		s.mu.Unlock()
		return
	}
	e.ready = false
	e.seq = 0
	s.mu.Unlock()

	_ = s.dispatch(ctx, id, model.TriggerFlush)
}

// Stop cancels every pending timer and ignores further edits. Writes already
// dispatched are left to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, e := range s.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(s.entries, id)
	}
}
