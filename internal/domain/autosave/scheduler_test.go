package autosave_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/scout/internal/domain/autosave"
	"github.com/okian/scout/internal/domain/inflight"
	"github.com/okian/scout/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const window = autosave.DefaultDebounce

// fakeDrafts is the content the saver persists; writes records what each
// write carried.
type fakeDrafts struct {
	mu      sync.Mutex
	content map[string]string
	writes  []string
	fail    error
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{content: map[string]string{}}
}

func (f *fakeDrafts) edit(id, v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content[id] = v
}

func (f *fakeDrafts) Save(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, id+"="+f.content[id])
	return f.fail
}

func (f *fakeDrafts) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

// heldDispatcher accepts jobs without running them so tests decide when a
// write completes.
type heldDispatcher struct {
	mu     sync.Mutex
	jobs   []model.SaveJob
	reject bool
}

func (d *heldDispatcher) Dispatch(_ context.Context, job model.SaveJob) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.reject {
		return false
	}
	d.jobs = append(d.jobs, job)
	return true
}

func (d *heldDispatcher) take() model.SaveJob {
	d.mu.Lock()
	defer d.mu.Unlock()
	job := d.jobs[0]
	d.jobs = d.jobs[1:]
	return job
}

func (d *heldDispatcher) queued() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.jobs)
}

func TestSchedulerDebounce(t *testing.T) {
	Convey("Given a scheduler that writes inline", t, func() {
		clock := autosave.NewManualClock()
		drafts := newFakeDrafts()
		var sched *autosave.Scheduler
		inline := autosave.DispatchFunc(func(ctx context.Context, job model.SaveJob) bool {
			_ = sched.Execute(ctx, job)
			return true
		})
		sched = autosave.New(drafts, inline, autosave.WithClock(clock))

		Convey("When a burst of edits lands inside the window", func() {
			for _, v := range []string{"R", "Ru", "Rui"} {
				drafts.edit("d1", v)
				sched.Touch("d1")
				clock.Advance(window / 2)
			}

			Convey("Then nothing is written before the window elapses after the last edit", func() {
				So(drafts.written(), ShouldBeEmpty)
				So(sched.State("d1"), ShouldEqual, autosave.StatePending)
			})

			Convey("Then exactly one write carries the final content", func() {
				clock.Advance(window)
				So(drafts.written(), ShouldResemble, []string{"d1=Rui"})
				So(sched.State("d1"), ShouldEqual, autosave.StateIdle)
				So(sched.Pending(), ShouldEqual, 0)
			})
		})

		Convey("When two drafts are edited", func() {
			drafts.edit("a", "1")
			drafts.edit("b", "2")
			sched.Touch("a")
			sched.Touch("b")
			clock.Advance(window)

			Convey("Then each gets its own write", func() {
				So(drafts.written(), ShouldResemble, []string{"a=1", "b=2"})
			})
		})

		Convey("When the window has not elapsed", func() {
			sched.Touch("d1")
			clock.Advance(window - time.Millisecond)

			Convey("Then the timer is still pending", func() {
				So(drafts.written(), ShouldBeEmpty)
				So(clock.Pending(), ShouldEqual, 1)
			})
		})

		Convey("When a custom debounce is configured", func() {
			quick := autosave.New(drafts, inline, autosave.WithClock(clock), autosave.WithDebounce(100*time.Millisecond))
			So(quick.Debounce(), ShouldEqual, 100*time.Millisecond)
		})
	})
}

func TestSchedulerManualSave(t *testing.T) {
	Convey("Given a scheduler that writes inline", t, func() {
		clock := autosave.NewManualClock()
		drafts := newFakeDrafts()
		var sched *autosave.Scheduler
		sched = autosave.New(drafts, autosave.DispatchFunc(func(ctx context.Context, job model.SaveJob) bool {
			_ = sched.Execute(ctx, job)
			return true
		}), autosave.WithClock(clock))

		Convey("When a manual save arrives while a timer is pending", func() {
			drafts.edit("d1", "v1")
			sched.Touch("d1")
			ok, err := sched.SaveNow(context.Background(), "d1")

			Convey("Then the write is immediate and the timer is cancelled", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(drafts.written(), ShouldResemble, []string{"d1=v1"})
				clock.Advance(3 * window)
				So(drafts.written(), ShouldResemble, []string{"d1=v1"})
			})
		})

		Convey("When a manual save is requested for a clean draft", func() {
			ok, err := sched.SaveNow(context.Background(), "d2")

			Convey("Then it still writes", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(len(drafts.written()), ShouldEqual, 1)
			})
		})
	})
}

func TestSchedulerSingleFlight(t *testing.T) {
	Convey("Given a scheduler whose writes complete on demand", t, func() {
		ctx := context.Background()
		clock := autosave.NewManualClock()
		drafts := newFakeDrafts()
		held := &heldDispatcher{}
		guard := inflight.NewInMemoryGuard()
		sched := autosave.New(drafts, held, autosave.WithClock(clock), autosave.WithGuard(guard))

		drafts.edit("d1", "old")
		sched.Touch("d1")
		clock.Advance(window)
		So(held.queued(), ShouldEqual, 1)
		So(sched.State("d1"), ShouldEqual, autosave.StateInFlight)

		Convey("When an edit arrives during the write and the window elapses after it completes", func() {
			drafts.edit("d1", "new")
			sched.Touch("d1")
			So(sched.Execute(ctx, held.take()), ShouldBeNil)
			So(sched.State("d1"), ShouldEqual, autosave.StatePending)
			clock.Advance(window)

			Convey("Then exactly one further write carries the newer content", func() {
				So(held.queued(), ShouldEqual, 1)
				So(sched.Execute(ctx, held.take()), ShouldBeNil)
				So(drafts.written(), ShouldResemble, []string{"d1=old", "d1=new"})
				clock.Advance(5 * window)
				So(held.queued(), ShouldEqual, 0)
			})
		})

		Convey("When the window elapses while the write is still in flight", func() {
			drafts.edit("d1", "new")
			sched.Touch("d1")
			clock.Advance(window)

			Convey("Then the fire is skipped without a second concurrent write", func() {
				So(held.queued(), ShouldEqual, 1)
				So(guard.Size(), ShouldEqual, int64(1))
			})

			Convey("Then completion re-arms one window and the newer content is written once", func() {
				So(sched.Execute(ctx, held.take()), ShouldBeNil)
				So(sched.State("d1"), ShouldEqual, autosave.StatePending)
				So(held.queued(), ShouldEqual, 0)
				clock.Advance(window)
				So(held.queued(), ShouldEqual, 1)
				So(sched.Execute(ctx, held.take()), ShouldBeNil)
				So(drafts.written(), ShouldResemble, []string{"d1=old", "d1=new"})
				clock.Advance(5 * window)
				So(held.queued(), ShouldEqual, 0)
			})
		})

		Convey("When a manual save is requested during the write", func() {
			ok, err := sched.SaveNow(ctx, "d1")

			Convey("Then it is a no-op", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				So(held.queued(), ShouldEqual, 1)
			})
		})

		Convey("When the write fails", func() {
			drafts.fail = errors.New("permission denied")
			err := sched.Execute(ctx, held.take())

			Convey("Then the error is returned, the lock released and nothing retried", func() {
				So(err, ShouldNotBeNil)
				So(sched.State("d1"), ShouldEqual, autosave.StateIdle)
				clock.Advance(5 * window)
				So(held.queued(), ShouldEqual, 0)
			})

			Convey("Then the next edit re-enters the pipeline", func() {
				drafts.fail = nil
				sched.Touch("d1")
				clock.Advance(window)
				So(held.queued(), ShouldEqual, 1)
			})
		})

		Convey("When the draft is forgotten mid-write", func() {
			sched.Touch("d1")
			sched.Forget("d1")

			Convey("Then the pending timer is cancelled but the write completes", func() {
				So(sched.Pending(), ShouldEqual, 0)
				So(sched.Execute(ctx, held.take()), ShouldBeNil)
				So(drafts.written(), ShouldResemble, []string{"d1=old"})
				clock.Advance(5 * window)
				So(held.queued(), ShouldEqual, 0)
				So(sched.State("d1"), ShouldEqual, autosave.StateIdle)
			})
		})
	})
}

func TestSchedulerRejectedDispatch(t *testing.T) {
	Convey("Given a dispatcher that refuses jobs", t, func() {
		ctx := context.Background()
		clock := autosave.NewManualClock()
		drafts := newFakeDrafts()
		held := &heldDispatcher{reject: true}
		sched := autosave.New(drafts, held, autosave.WithClock(clock))

		Convey("When a manual save is refused", func() {
			ok, err := sched.SaveNow(ctx, "d1")

			Convey("Then the error says so and a retry is scheduled", func() {
				So(ok, ShouldBeFalse)
				So(errors.Is(err, autosave.ErrDispatchRejected), ShouldBeTrue)
				So(sched.State("d1"), ShouldEqual, autosave.StatePending)

				held.mu.Lock()
				held.reject = false
				held.mu.Unlock()
				clock.Advance(window)
				So(held.queued(), ShouldEqual, 1)
			})
		})
	})
}

func TestSchedulerStop(t *testing.T) {
	Convey("Given a stopped scheduler", t, func() {
		clock := autosave.NewManualClock()
		drafts := newFakeDrafts()
		held := &heldDispatcher{}
		sched := autosave.New(drafts, held, autosave.WithClock(clock))
		sched.Touch("d1")
		sched.Stop()

		Convey("Then pending timers never fire and edits are ignored", func() {
			sched.Touch("d2")
			clock.Advance(5 * window)
			So(held.queued(), ShouldEqual, 0)
			So(sched.Pending(), ShouldEqual, 0)
			ok, err := sched.SaveNow(context.Background(), "d1")
			So(ok, ShouldBeFalse)
			So(err, ShouldBeNil)
		})
	})
}

func waitUntil(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

func TestSchedulerFlush(t *testing.T) {
	Convey("Given a scheduler that writes inline with edits inside the window", t, func() {
		clock := autosave.NewManualClock()
		drafts := newFakeDrafts()
		var sched *autosave.Scheduler
		var triggers []string
		inline := autosave.DispatchFunc(func(ctx context.Context, job model.SaveJob) bool {
			triggers = append(triggers, job.Trigger)
			_ = sched.Execute(ctx, job)
			return true
		})
		sched = autosave.New(drafts, inline, autosave.WithClock(clock))

		drafts.edit("d1", "first")
		sched.Touch("d1")
		drafts.edit("d1", "final")
		sched.Touch("d1")
		drafts.edit("d2", "other")
		sched.Touch("d2")
		clock.Advance(window / 2)

		Convey("When flushed", func() {
			So(sched.Flush(context.Background()), ShouldBeNil)

			Convey("Then each draft is written once with its latest content without waiting", func() {
				So(drafts.written(), ShouldHaveLength, 2)
				So(drafts.written(), ShouldContain, "d1=final")
				So(drafts.written(), ShouldContain, "d2=other")
				So(triggers, ShouldResemble, []string{model.TriggerFlush, model.TriggerFlush})
				So(sched.Pending(), ShouldEqual, 0)
			})

			Convey("Then the cancelled timers never fire", func() {
				clock.Advance(5 * window)
				So(drafts.written(), ShouldHaveLength, 2)
			})
		})
	})

	Convey("Given a scheduler whose writes complete on demand", t, func() {
		ctx := context.Background()
		clock := autosave.NewManualClock()
		drafts := newFakeDrafts()
		held := &heldDispatcher{}
		sched := autosave.New(drafts, held, autosave.WithClock(clock))

		drafts.edit("d1", "old")
		sched.Touch("d1")
		clock.Advance(window)
		So(held.queued(), ShouldEqual, 1)
		drafts.edit("d1", "new")
		sched.Touch("d1")

		Convey("When flushed while a write is in flight", func() {
			done := make(chan error, 1)
			go func() { done <- sched.Flush(ctx) }()
			So(sched.Execute(ctx, held.take()), ShouldBeNil)
			So(waitUntil(func() bool { return held.queued() == 1 }), ShouldBeTrue)
			job := held.take()
			So(sched.Execute(ctx, job), ShouldBeNil)

			Convey("Then the pending edit is written after it and the flush returns", func() {
				So(<-done, ShouldBeNil)
				So(job.Trigger, ShouldEqual, model.TriggerFlush)
				So(drafts.written(), ShouldResemble, []string{"d1=old", "d1=new"})
				So(sched.State("d1"), ShouldEqual, autosave.StateIdle)
			})
		})

		Convey("When the in-flight write never completes", func() {
			tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			err := sched.Flush(tctx)

			Convey("Then the flush gives up when the context ends", func() {
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
				So(held.queued(), ShouldEqual, 1)
				So(sched.State("d1"), ShouldEqual, autosave.StateInFlight)
			})
		})
	})
}
