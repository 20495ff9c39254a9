package seed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/domain/grading"
	"github.com/okian/scout/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }

type failingWriter struct {
	after int
	calls int
}

func (w *failingWriter) Create(context.Context, model.Evaluation) (string, error) {
	w.calls++
	if w.calls > w.after {
		return "", errors.New("boom")
	}
	return "id", nil
}

func TestGenerate(t *testing.T) {
	Convey("Given a fixed seed", t, func() {
		a := Generate(20, WithSeed(42), WithNow(fixedNow))
		b := Generate(20, WithSeed(42), WithNow(fixedNow))

		Convey("Then the output is deterministic", func() {
			So(a, ShouldHaveLength, 20)
			So(a, ShouldResemble, b)
		})

		Convey("Then every evaluation is coherent", func() {
			for _, e := range a {
				So(e.Name, ShouldNotBeBlank)
				_, ok := grading.Lookup(e.PositionID)
				So(ok, ShouldBeTrue)
				for c, r := range e.Ratings {
					So(grading.HasCompetency(e.PositionID, c), ShouldBeTrue)
					So(r.Grade.Valid(), ShouldBeTrue)
				}
				d, err := time.Parse(model.DateLayout, e.ObservationDate)
				So(err, ShouldBeNil)
				So(d.After(fixedNow()), ShouldBeFalse)
			}
		})
	})

	Convey("Given a different seed", t, func() {
		a := Generate(5, WithSeed(1), WithNow(fixedNow))
		b := Generate(5, WithSeed(2), WithNow(fixedNow))

		Convey("Then the output differs", func() {
			So(a, ShouldNotResemble, b)
		})
	})

	Convey("Given a zero grade rate", t, func() {
		out := Generate(10, WithGradeRate(0))

		Convey("Then nothing is graded", func() {
			for _, e := range out {
				So(e.Ratings, ShouldBeEmpty)
			}
		})
	})

	Convey("Given a negative count", t, func() {
		So(Generate(-1), ShouldBeEmpty)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a memory repository", t, func() {
		repo := repository.NewMemoryStore()
		Reset(func() { _ = repo.Close() })

		Convey("When seeding ten reports", func() {
			ids, err := Run(context.Background(), repo, 10, nil, WithSeed(7))

			Convey("Then all of them are stored", func() {
				So(err, ShouldBeNil)
				So(ids, ShouldHaveLength, 10)
				So(repo.Len(), ShouldEqual, 10)
			})
		})
	})

	Convey("Given a writer that fails on the third call", t, func() {
		w := &failingWriter{after: 2}
		ids, err := Run(context.Background(), w, 5, nil)

		Convey("Then seeding stops with the ids written so far", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "seed report 2")
			So(ids, ShouldHaveLength, 2)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Run(ctx, &failingWriter{after: 10}, 3, nil)

		Convey("Then nothing is written", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
