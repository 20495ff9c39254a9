package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/okian/scout/internal/domain/grading"
)

// palette renders grade letters in their report colours. Output that is not a
// terminal gets plain text.
type palette struct {
	renderer *lipgloss.Renderer
	faint    lipgloss.Style
	title    lipgloss.Style
}

func newPalette(out io.Writer) *palette {
	r := lipgloss.NewRenderer(out)
	return &palette{
		renderer: r,
		faint:    r.NewStyle().Faint(true),
		title:    r.NewStyle().Bold(true),
	}
}

// grade renders g as a coloured letter, or a faint dash when ungraded.
func (p *palette) grade(g grading.Grade, ok bool) string {
	if !ok || !g.Valid() {
		return p.faint.Render("-")
	}
	return p.renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(g.Color())).Render(g.String())
}
