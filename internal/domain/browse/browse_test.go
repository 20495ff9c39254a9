package browse_test

import (
	"testing"

	"github.com/okian/scout/internal/domain/browse"
	"github.com/okian/scout/internal/domain/grading"
	"github.com/okian/scout/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func report(id, name, club, position string, createdAt int64, grades ...string) model.Report {
	r := model.Report{
		ID:        id,
		CreatedAt: createdAt,
		Evaluation: model.Evaluation{
			Name:       name,
			Club:       club,
			PositionID: position,
			Ratings:    map[string]model.Rating{},
		},
	}
	for i := 0; i+1 < len(grades); i += 2 {
		r.Ratings[grades[i]] = model.Rating{Grade: grading.Grade(grades[i+1])}
	}
	return r
}

func TestBuild(t *testing.T) {
	Convey("Given a snapshot of reports", t, func() {
		reports := []model.Report{
			report("1", "João Félix", "Benfica", "AV", 100, "Finalização", "C"),
			report("2", "  joão félix ", "Atlético", "EX", 300, "Finalização", "A"),
			report("3", "Bruno Fernandes", "Sporting", "MC", 200),
			report("4", "", "Porto", "DC", 50),
			report("5", "", "Porto", "DC", 60),
			report("6", "Abel", "Braga", "GR", 0),
		}

		Convey("When grouping without filters", func() {
			groups := browse.Build(reports, browse.Filter{})

			Convey("Then reports with the same trimmed lowercase name share one group", func() {
				var joao *browse.Group
				for i := range groups {
					if groups[i].Key == "joão félix" {
						joao = &groups[i]
					}
				}
				So(joao, ShouldNotBeNil)
				So(len(joao.Reports), ShouldEqual, 2)
				So(joao.Reports[0].ID, ShouldEqual, "2")
				So(joao.Reports[1].ID, ShouldEqual, "1")
			})

			Convey("Then the newest report drives name, club and overall grade", func() {
				g, ok := browse.Find(reports, "joão félix")
				So(ok, ShouldBeTrue)
				So(g.Club, ShouldEqual, "Atlético")
				So(g.Overall, ShouldEqual, grading.A)
				So(g.Graded, ShouldBeTrue)
				So(g.Positions, ShouldResemble, []string{grading.Label("EX"), grading.Label("AV")})
			})

			Convey("Then unnamed reports each form their own group", func() {
				count := 0
				for _, g := range groups {
					if g.Name == browse.UnnamedPlayer {
						count++
						So(len(g.Reports), ShouldEqual, 1)
					}
				}
				So(count, ShouldEqual, 2)
			})

			Convey("Then groups are ordered by name case-insensitively", func() {
				So(len(groups), ShouldEqual, 5)
				So(groups[0].Name, ShouldEqual, "Abel")
				So(groups[1].Name, ShouldEqual, "Bruno Fernandes")
			})

			Convey("Then ungraded groups report no overall grade", func() {
				So(groups[1].Graded, ShouldBeFalse)
				So(groups[1].Overall, ShouldEqual, grading.None)
			})
		})

		Convey("When searching by club", func() {
			groups := browse.Build(reports, browse.Filter{Search: "  SPORT "})

			Convey("Then only matching reports remain", func() {
				So(len(groups), ShouldEqual, 1)
				So(groups[0].Name, ShouldEqual, "Bruno Fernandes")
			})
		})

		Convey("When combining search and position", func() {
			groups := browse.Build(reports, browse.Filter{Search: "félix", PositionID: "AV"})

			Convey("Then both predicates must hold", func() {
				So(len(groups), ShouldEqual, 1)
				So(len(groups[0].Reports), ShouldEqual, 1)
				So(groups[0].Reports[0].ID, ShouldEqual, "1")
				So(groups[0].Overall, ShouldEqual, grading.C)
			})
		})

		Convey("When nothing matches", func() {
			groups := browse.Build(reports, browse.Filter{Search: "zzz"})

			Convey("Then the index is empty", func() {
				So(groups, ShouldBeEmpty)
			})
		})

		Convey("When looking up an unknown key", func() {
			_, ok := browse.Find(reports, "nobody")

			Convey("Then nothing is found", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"João Félix":          "JF",
		"bruno miguel borges": "BM",
		"Pepe":                "P",
		"   ":                 "?",
	}
	for name, want := range cases {
		if got := browse.Initials(name); got != want {
			t.Errorf("Initials(%q) = %q, want %q", name, got, want)
		}
	}
}
