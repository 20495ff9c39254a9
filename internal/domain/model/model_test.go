package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/scout/internal/domain/grading"
	model "github.com/okian/scout/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func sampleEvaluation() model.Evaluation {
	return model.Evaluation{
		Name:       "Rui Costa",
		Club:       "Académica",
		PositionID: "MC",
		Ratings: map[string]model.Rating{
			"Duelos":           {Grade: grading.B, Note: "wins most"},
			"Retenção de bola": {Grade: grading.A},
		},
		ObservationDate: "03/05/2025",
	}
}

func TestEvaluation(t *testing.T) {
	convey.Convey("Given an evaluation", t, func() {
		ev := sampleEvaluation()

		convey.Convey("When it is cloned and the clone edited", func() {
			cp := ev.Clone()
			cp.Ratings["Duelos"] = model.Rating{Grade: grading.E}

			convey.Convey("Then the original ratings are untouched", func() {
				convey.So(ev.Ratings["Duelos"].Grade, convey.ShouldEqual, grading.B)
			})
		})

		convey.Convey("When cloning an evaluation without ratings", func() {
			cp := model.Evaluation{}.Clone()

			convey.Convey("Then the ratings map is ready to use", func() {
				convey.So(cp.Ratings, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When setting text fields by name", func() {
			convey.So(ev.SetText("club", "Benfica"), convey.ShouldBeTrue)
			convey.So(ev.SetText("observationDate", "01/01/2026"), convey.ShouldBeFalse)
			convey.So(ev.SetText("positionId", "GR"), convey.ShouldBeFalse)
			convey.So(ev.SetText("height", "1.80"), convey.ShouldBeFalse)

			convey.Convey("Then only known text fields change", func() {
				convey.So(ev.Club, convey.ShouldEqual, "Benfica")
				convey.So(ev.ObservationDate, convey.ShouldEqual, "03/05/2025")
				convey.So(ev.PositionID, convey.ShouldEqual, "MC")
				convey.So(model.IsTextField("summary"), convey.ShouldBeTrue)
				convey.So(model.IsTextField(model.FieldPosition), convey.ShouldBeFalse)
			})
		})

		convey.Convey("Then its overall grade comes from the position", func() {
			g, ok := ev.Overall()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(g, convey.ShouldEqual, grading.B)
		})
	})
}

func TestFormatDate(t *testing.T) {
	convey.Convey("Given a calendar day", t, func() {
		day := time.Date(2025, time.March, 7, 15, 4, 0, 0, time.UTC)

		convey.Convey("Then it is rendered day first", func() {
			convey.So(model.FormatDate(day), convey.ShouldEqual, "07/03/2025")
		})
	})
}

func TestDocument(t *testing.T) {
	convey.Convey("Given a stored report document", t, func() {
		data, err := model.EncodeDocument(sampleEvaluation(), 1717000000)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then it uses the persisted field names and carries no id", func() {
			var raw map[string]any
			convey.So(json.Unmarshal(data, &raw), convey.ShouldBeNil)
			convey.So(raw["positionId"], convey.ShouldEqual, "MC")
			convey.So(raw["creationTimestamp"], convey.ShouldEqual, float64(1717000000))
			convey.So(raw, convey.ShouldNotContainKey, "id")
			convey.So(raw, convey.ShouldNotContainKey, "state")
			ratings := raw["ratings"].(map[string]any)
			convey.So(ratings["Duelos"], convey.ShouldResemble, map[string]any{"grade": "B", "note": "wins most"})
		})

		convey.Convey("When decoding it under a server id", func() {
			r, err := model.DecodeDocument("42", data)

			convey.Convey("Then the report is rebuilt", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(r.ID, convey.ShouldEqual, "42")
				convey.So(r.CreatedAt, convey.ShouldEqual, 1717000000)
				convey.So(r.Name, convey.ShouldEqual, "Rui Costa")
			})
		})

		convey.Convey("When decoding garbage", func() {
			_, err := model.DecodeDocument("7", []byte("{"))

			convey.Convey("Then an error names the record", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "7")
			})
		})
	})
}

func TestDraftClone(t *testing.T) {
	convey.Convey("Given a draft with a photo", t, func() {
		d := model.Draft{ID: "d1", Evaluation: sampleEvaluation(), Photo: []byte{1, 2, 3}, State: model.StateSaved}

		convey.Convey("When the clone's photo is edited", func() {
			cp := d.Clone()
			cp.Photo[0] = 9

			convey.Convey("Then the original photo is untouched", func() {
				convey.So(d.Photo[0], convey.ShouldEqual, 1)
				convey.So(cp.HasPhoto(), convey.ShouldBeTrue)
			})
		})
	})
}
