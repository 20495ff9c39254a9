package repository

import (
	"context"
	"sync"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// event is either a snapshot or a failure.
type event struct {
	reports []model.Report
	err     error
}

// subscriber owns a single-slot mailbox drained by its own goroutine. A newer
// event replaces one the subscriber has not consumed yet, so a slow callback
// only ever sees the latest collection.
type subscriber struct {
	mailbox    chan event
	done       chan struct{}
	stopOnce   sync.Once
	onSnapshot SnapshotFunc
	onError    ErrorFunc
}

func (s *subscriber) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case ev := <-s.mailbox:
			select {
			case <-s.done:
				return
			default:
			}
			if ev.err != nil {
				if s.onError != nil {
					s.onError(ev.err)
				}
				continue
			}
			if s.onSnapshot != nil {
				s.onSnapshot(ev.reports)
			}
		}
	}
}

// offer must not be called concurrently for the same subscriber; the hub
// serialises it under its lock.
func (s *subscriber) offer(ev event) {
	select {
	case s.mailbox <- ev:
		return
	default:
	}
	select {
	case <-s.mailbox:
		metrics.RecordSnapshotCoalesced()
	default:
	}
	s.mailbox <- ev
}

func (s *subscriber) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// hub fans snapshots out to subscribers.
type hub struct {
	mu     sync.Mutex
	subs   map[uint64]*subscriber
	next   uint64
	closed bool
	logger logger.Logger
}

func newHub(l logger.Logger) *hub {
	return &hub{subs: make(map[uint64]*subscriber), logger: l}
}

// add registers a subscriber and queues first as its initial event.
func (h *hub) add(ctx context.Context, first event, onSnapshot SnapshotFunc, onError ErrorFunc) (uint64, *subscriber) {
	s := &subscriber{
		mailbox:    make(chan event, 1),
		done:       make(chan struct{}),
		onSnapshot: onSnapshot,
		onError:    onError,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		s.stop()
		return 0, s
	}
	h.next++
	id := h.next
	h.subs[id] = s
	s.offer(first)
	go s.run(ctx)
	return id, s
}

func (h *hub) remove(id uint64) {
	h.mu.Lock()
	s, ok := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()
	if ok {
		s.stop()
	}
}

// deliver offers ev to one subscriber.
func (h *hub) deliver(id uint64, ev event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.subs[id]; ok {
		s.offer(ev)
	}
}

// publish offers a snapshot to every subscriber. Each gets its own copy.
func (h *hub) publish(reports []model.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	metrics.RecordSnapshotPublished()
	for _, s := range h.subs {
		s.offer(event{reports: cloneReports(reports)})
	}
}

// fail offers err to every subscriber.
func (h *hub) fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger.Warn(context.Background(), "snapshot failed", logger.Error(err))
	for _, s := range h.subs {
		s.offer(event{err: err})
	}
}

func (h *hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, s := range h.subs {
		s.stop()
		delete(h.subs, id)
	}
}
