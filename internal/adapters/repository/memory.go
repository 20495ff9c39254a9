package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/metrics"
)

const backendMemory = "memory"

// MemoryStore keeps reports in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	reports map[string]model.Report
	closed  bool
	hub     *hub
	cfg     settings
}

// NewMemoryStore creates an empty in-memory repository.
func NewMemoryStore(opts ...Option) *MemoryStore {
	cfg := newSettings(opts)
	return &MemoryStore{
		reports: make(map[string]model.Report),
		hub:     newHub(cfg.logger.Named("memory-repository")),
		cfg:     cfg,
	}
}

// Create stores a new report.
func (s *MemoryStore) Create(ctx context.Context, e model.Evaluation) (string, error) {
	defer observe(backendMemory, "create", time.Now())
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	id := s.cfg.newID()
	s.reports[id] = model.Report{ID: id, Evaluation: e.Clone(), CreatedAt: s.cfg.now().Unix()}
	s.publishLocked()
	return id, nil
}

// Update replaces an existing report's evaluation.
func (s *MemoryStore) Update(ctx context.Context, id string, e model.Evaluation) error {
	defer observe(backendMemory, "update", time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	current, ok := s.reports[id]
	if !ok {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	s.reports[id] = model.Report{ID: id, Evaluation: e.Clone(), CreatedAt: current.CreatedAt}
	s.publishLocked()
	return nil
}

// Delete removes a report if present.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	defer observe(backendMemory, "delete", time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.reports, id)
	s.publishLocked()
	return nil
}

// Subscribe streams snapshots until unsubscribed, ctx ends or the store closes.
func (s *MemoryStore) Subscribe(ctx context.Context, onSnapshot SnapshotFunc, onError ErrorFunc) func() {
	s.mu.Lock()
	id, _ := s.hub.add(ctx, event{reports: s.snapshotLocked()}, onSnapshot, onError)
	s.mu.Unlock()
	return func() { s.hub.remove(id) }
}

// Close ends all subscriptions.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.hub.close()
	return nil
}

// Len returns the number of stored reports.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func (s *MemoryStore) snapshotLocked() []model.Report {
	out := make([]model.Report, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r.Clone())
	}
	sortReports(out)
	return out
}

func (s *MemoryStore) publishLocked() {
	s.hub.publish(s.snapshotLocked())
}

func observe(backend, op string, start time.Time) {
	metrics.RecordRepositoryLatency(backend, op, float64(time.Since(start).Microseconds())/1000)
}
