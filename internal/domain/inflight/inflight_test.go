package inflight_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/okian/scout/internal/domain/inflight"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryGuard(t *testing.T) {
	Convey("Given a new guard", t, func() {
		ctx := context.Background()
		g := inflight.NewInMemoryGuard()

		Convey("Then nothing is held", func() {
			So(g.Size(), ShouldEqual, int64(0))
			So(g.Held("d1"), ShouldBeFalse)
		})

		Convey("When a key is acquired", func() {
			ok := g.Acquire(ctx, "d1")

			Convey("Then it is held and a second acquire fails", func() {
				So(ok, ShouldBeTrue)
				So(g.Held("d1"), ShouldBeTrue)
				So(g.Acquire(ctx, "d1"), ShouldBeFalse)
				So(g.Size(), ShouldEqual, int64(1))
			})

			Convey("Then other keys are independent", func() {
				So(g.Acquire(ctx, "d2"), ShouldBeTrue)
				So(g.Size(), ShouldEqual, int64(2))
			})

			Convey("And it is released", func() {
				g.Release(ctx, "d1")

				Convey("Then it can be acquired again", func() {
					So(g.Held("d1"), ShouldBeFalse)
					So(g.Acquire(ctx, "d1"), ShouldBeTrue)
				})
			})
		})

		Convey("When releasing a key that is not held", func() {
			g.Release(ctx, "ghost")

			Convey("Then the size does not go negative", func() {
				So(g.Size(), ShouldEqual, int64(0))
			})
		})
	})
}

func TestInMemoryGuardConcurrentAcquire(t *testing.T) {
	Convey("Given many goroutines racing for the same keys", t, func() {
		ctx := context.Background()
		g := inflight.NewInMemoryGuard()
		const keys, racers = 10, 50

		var winners atomic.Int64
		var wg sync.WaitGroup
		for k := 0; k < keys; k++ {
			for r := 0; r < racers; r++ {
				wg.Add(1)
				go func(key string) {
					defer wg.Done()
					if g.Acquire(ctx, key) {
						winners.Add(1)
					}
				}(fmt.Sprintf("draft-%d", k))
			}
		}
		wg.Wait()

		Convey("Then exactly one racer wins each key", func() {
			So(winners.Load(), ShouldEqual, int64(keys))
			So(g.Size(), ShouldEqual, int64(keys))
		})
	})
}
