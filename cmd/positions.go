package main

import (
	"fmt"

	"github.com/okian/scout/internal/domain/grading"
	"github.com/spf13/cobra"
)

func newPositionsCmd(c *cli) *cobra.Command {
	var tooltips bool
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "List positions and their competencies",
		RunE: func(*cobra.Command, []string) error {
			p := newPalette(c.out)
			for _, pos := range grading.Positions() {
				fmt.Fprintf(c.out, "%s  %s (%s)\n", p.title.Render(pos.ID), pos.Label, pos.Abbreviation)
				for _, comp := range pos.Competencies {
					fmt.Fprintf(c.out, "  - %s\n", comp)
					if tip := grading.Tooltip(comp); tooltips && tip != "" {
						fmt.Fprintf(c.out, "      %s\n", p.faint.Render(tip))
					}
				}
			}
			fmt.Fprintln(c.out)
			for _, g := range grading.Grades {
				fmt.Fprintf(c.out, "%s %3d%%  ", p.grade(g, true), g.Percent())
			}
			fmt.Fprintln(c.out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&tooltips, "tooltips", false, "print competency descriptions")
	return cmd
}
