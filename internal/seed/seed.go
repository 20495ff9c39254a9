// Package seed generates fake but coherent scouting evaluations for demos
// and load tests.
package seed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/okian/scout/internal/domain/grading"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"
)

// Writer is the subset of a repository the seeder needs.
type Writer interface {
	Create(ctx context.Context, e model.Evaluation) (string, error)
}

//nolint:gochecknoglobals // fixed vocabulary
var (
	clubs = []string{
		"Vizela", "Moreirense", "Famalicão", "Arouca", "Estoril", "Casa Pia",
		"Gil Vicente", "Rio Ave", "Boavista", "Chaves", "Farense", "Tondela",
	}
	feet  = []string{"Direito", "Esquerdo", "Ambidestro"}
	notes = []string{"consistente", "irregular", "acima da média", "a rever"}
)

// Generator builds evaluations from a seeded faker, so the same seed always
// yields the same evaluations.
type Generator struct {
	faker     *gofakeit.Faker
	gradeRate int
	noteRate  int
	now       func() time.Time
}

// NewGenerator creates a generator.
func NewGenerator(opts ...Option) *Generator {
	s := settings{seed: 1, gradeRate: 80, noteRate: 30, now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return &Generator{
		faker:     gofakeit.New(s.seed),
		gradeRate: s.gradeRate,
		noteRate:  s.noteRate,
		now:       s.now,
	}
}

// Generate returns n evaluations.
func Generate(n int, opts ...Option) []model.Evaluation {
	g := NewGenerator(opts...)
	out := make([]model.Evaluation, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, g.Next())
	}
	return out
}

// Next returns one evaluation.
func (g *Generator) Next() model.Evaluation {
	f := g.faker
	positions := grading.Positions()
	pos := positions[f.Number(0, len(positions)-1)]

	e := model.Evaluation{
		Name:             f.FirstName() + " " + f.LastName(),
		Age:              strconv.Itoa(f.Number(16, 34)),
		Nationality:      f.Country(),
		Club:             f.RandomString(clubs),
		PositionID:       pos.ID,
		SpecificPosition: pos.Label,
		Foot:             f.RandomString(feet),
		JerseyNumber:     strconv.Itoa(f.Number(1, 99)),
		MatchObserved:    f.RandomString(clubs) + " vs " + f.RandomString(clubs),
		Summary:          f.Sentence(f.Number(6, 18)),
		Ratings:          map[string]model.Rating{},
		ObservationDate:  model.FormatDate(f.DateRange(g.now().AddDate(0, -6, 0), g.now())),
	}
	for _, c := range pos.Competencies {
		if f.Number(1, 100) > g.gradeRate {
			continue
		}
		r := model.Rating{Grade: grading.Grades[f.Number(0, len(grading.Grades)-1)]}
		if f.Number(1, 100) <= g.noteRate {
			r.Note = f.RandomString(notes)
		}
		e.Ratings[c] = r
	}
	return e
}

// Run writes n generated evaluations through w and returns the new ids.
// It stops at the first failed write.
func Run(ctx context.Context, w Writer, n int, l logger.Logger, opts ...Option) ([]string, error) {
	if l == nil {
		l = logger.Nop()
	}
	g := NewGenerator(opts...)
	ids := make([]string, 0, max(n, 0))
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return ids, err
		}
		e := g.Next()
		id, err := w.Create(ctx, e)
		if err != nil {
			return ids, fmt.Errorf("seed report %d: %w", i, err)
		}
		ids = append(ids, id)
		l.Debug(ctx, "seeded report", logger.String("id", id), logger.String("name", e.Name))
	}
	l.Info(ctx, "seed complete", logger.Int("reports", len(ids)))
	return ids, nil
}
