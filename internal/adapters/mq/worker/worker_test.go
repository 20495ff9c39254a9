package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/scout/internal/adapters/mq/queue"
	worker "github.com/okian/scout/internal/adapters/mq/worker"
	model "github.com/okian/scout/internal/domain/model"
	logging "github.com/okian/scout/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs   chan queue.Job
	closed sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Job {
	return mq.jobs
}

func (mq *mockQueue) Close() error {
	mq.closed.Do(func() { close(mq.jobs) })
	return nil
}

func (mq *mockQueue) add(draftID string) {
	mq.jobs <- queue.Job{DraftID: draftID, Trigger: model.TriggerDebounce, Enqueued: time.Now()}
}

type mockExecutor struct {
	mu     sync.Mutex
	seen   []string
	errors map[string]error
	delay  time.Duration
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{errors: make(map[string]error)}
}

func (me *mockExecutor) Execute(ctx context.Context, job queue.Job) error {
	if me.delay > 0 {
		time.Sleep(me.delay)
	}
	me.mu.Lock()
	defer me.mu.Unlock()
	me.seen = append(me.seen, job.DraftID)
	return me.errors[job.DraftID]
}

func (me *mockExecutor) setError(draftID string, err error) {
	me.mu.Lock()
	defer me.mu.Unlock()
	me.errors[draftID] = err
}

func (me *mockExecutor) count() int {
	me.mu.Lock()
	defer me.mu.Unlock()
	return len(me.seen)
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestWorker(t *testing.T) {
	convey.Convey("Given a worker reading save jobs", t, func() {
		_ = logging.Init()
		q := newMockQueue()
		exec := newMockExecutor()
		w := worker.NewInMemoryWorker(q, exec, worker.WithName("test-worker"), worker.WithLogger(logging.Get()))

		convey.Convey("When jobs are queued", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			q.add("d1")
			q.add("d2")

			convey.Convey("Then each one is executed", func() {
				convey.So(eventually(func() bool { return exec.count() == 2 }), convey.ShouldBeTrue)
				convey.So(eventually(func() bool { return w.Processed() == 2 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the executor fails", func() {
			exec.setError("bad", errors.New("backend unavailable"))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			q.add("bad")
			q.add("good")

			convey.Convey("Then the worker keeps going", func() {
				convey.So(eventually(func() bool { return exec.count() == 2 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the queue is closed", func() {
			q.add("d1")
			_ = q.Close()
			done := make(chan struct{})
			go func() {
				w.Run(context.Background())
				close(done)
			}()

			convey.Convey("Then the worker drains it and exits", func() {
				select {
				case <-done:
				case <-time.After(2 * time.Second):
					t.Fatal("worker did not exit after queue close")
				}
				convey.So(exec.count(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When shutdown is requested", func() {
			go w.Run(context.Background())
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			convey.Convey("Then it returns without error and is idempotent", func() {
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When shutdown times out", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			convey.Convey("Then the context error is returned", func() {
				err := w.Shutdown(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		q := newMockQueue()
		exec := newMockExecutor()

		convey.Convey("When created with a non-positive size", func() {
			p := worker.NewPool(0, q, exec)

			convey.Convey("Then it falls back to at least one worker", func() {
				convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When started and fed jobs", func() {
			p := worker.NewPool(3, q, exec)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			p.Start(ctx)

			for _, id := range []string{"a", "b", "c", "d", "e"} {
				q.add(id)
			}

			convey.Convey("Then all jobs run before shutdown returns", func() {
				convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)
				convey.So(exec.count(), convey.ShouldEqual, 5)
				convey.So(p.Processed(), convey.ShouldEqual, int64(5))
			})
		})

		convey.Convey("When shutdown overruns its deadline", func() {
			exec.delay = 200 * time.Millisecond
			p := worker.NewPool(1, q, exec)
			p.Start(context.Background())
			q.add("slow")
			q.add("slower")

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			convey.Convey("Then an error is reported", func() {
				convey.So(p.Shutdown(ctx), convey.ShouldNotBeNil)
			})
		})
	})
}
