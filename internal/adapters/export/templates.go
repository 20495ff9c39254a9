package export

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/okian/scout/internal/domain/browse"
	"github.com/okian/scout/internal/domain/grading"
	"github.com/okian/scout/pkg/logger"
)

//go:embed templates/report.html
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html"))

const unnamedPlayer = "Nome do Jogador"

// TemplateData holds data for report template rendering.
type TemplateData struct {
	Title    string
	ClubName string
	Sections []Section
}

// Section is one report laid out for print.
type Section struct {
	Name         string
	Initials     string
	Photo        template.URL
	Position     string
	Chips        []Chip
	Match        string
	Overall      grading.Grade
	OverallColor string
	Graded       int
	Total        int
	Competencies []CompetencyRow
	Summary      string
	Date         string
}

// Chip is a labelled metadata value in the identity block.
type Chip struct {
	Label string
	Value string
}

// CompetencyRow is one competency with its grade bar.
type CompetencyRow struct {
	Name    string
	Grade   grading.Grade
	Color   string
	Percent int
	Note    string
}

func buildSection(ctx context.Context, e Entry, log logger.Logger) Section {
	r := e.Report
	s := Section{
		Name:     r.Name,
		Initials: browse.Initials(r.Name),
		Match:    r.MatchObserved,
		Summary:  r.Summary,
		Date:     r.ObservationDate,
	}
	if strings.TrimSpace(s.Name) == "" {
		s.Name = unnamedPlayer
	}

	if len(e.Photo) > 0 {
		uri, err := thumbnail(e.Photo)
		if err != nil {
			log.Warn(ctx, "photo skipped", logger.String("report", r.ID), logger.Error(err))
		} else {
			s.Photo = uri
		}
	}

	for _, c := range []Chip{
		{Label: "Idade", Value: r.Age},
		{Label: "Nac.", Value: r.Nationality},
		{Label: "Clube", Value: r.Club},
		{Label: "Pé", Value: r.Foot},
		{Label: "Nº", Value: r.JerseyNumber},
	} {
		if strings.TrimSpace(c.Value) != "" {
			s.Chips = append(s.Chips, c)
		}
	}

	pos, ok := grading.Lookup(r.PositionID)
	if !ok {
		return s
	}
	s.Position = pos.Label
	if g, graded := r.Overall(); graded {
		s.Overall = g
		s.OverallColor = g.Color()
		s.Graded, s.Total = grading.GradedCount(r.Ratings, r.PositionID)
	}
	for _, c := range pos.Competencies {
		rating := r.Ratings[c]
		row := CompetencyRow{Name: c, Note: strings.TrimSpace(rating.Note)}
		if rating.Grade.Valid() {
			row.Grade = rating.Grade
			row.Color = rating.Grade.Color()
			row.Percent = rating.Grade.Percent()
		}
		s.Competencies = append(s.Competencies, row)
	}
	return s
}

func renderHTML(data TemplateData) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render report template: %w", err)
	}
	return buf.Bytes(), nil
}
