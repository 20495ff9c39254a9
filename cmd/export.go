package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/scout/internal/adapters/export"
	"github.com/okian/scout/internal/domain/browse"
	"github.com/spf13/cobra"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		output string
		asHTML bool
	)
	cmd := &cobra.Command{
		Use:   "export <player>",
		Short: "Export every report about a player",
		Long: `Export a player's reports as one PDF, newest first. The player is matched
by group key (the lowercase name). --html writes the HTML document instead and
needs no browser.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, err := c.openRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			reports, err := snapshot(ctx, repo)
			if err != nil {
				return err
			}
			group, ok := browse.Find(reports, strings.ToLower(strings.TrimSpace(args[0])))
			if !ok {
				return fmt.Errorf("no reports for player %q", args[0])
			}

			entries := make([]export.Entry, len(group.Reports))
			for i, r := range group.Reports {
				entries[i] = export.Entry{Report: r}
			}

			var res *export.Result
			filename := export.GroupFilename(group.Name)
			if asHTML {
				svc := export.NewService(export.WithClubName(c.cfg.ClubName), export.WithLogger(c.log.Named("export")))
				res, err = svc.HTML(ctx, entries, strings.TrimSuffix(filename, ".pdf"))
				filename = strings.TrimSuffix(filename, ".pdf") + ".html"
			} else {
				res, err = newExporter(ctx, c).Export(ctx, entries, filename)
			}
			if err != nil {
				return fmt.Errorf("export %s: %w", group.Name, err)
			}

			if output == "" {
				output = filename
			}
			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create %s: %w", dir, err)
				}
			}
			if err := os.WriteFile(output, res.Data, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(c.out, "Exported %d report(s) to %s\n", len(entries), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: derived from the player name)")
	cmd.Flags().BoolVar(&asHTML, "html", false, "write HTML instead of PDF")
	return cmd
}
