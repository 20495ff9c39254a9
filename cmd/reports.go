package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/domain/browse"
	"github.com/okian/scout/internal/domain/model"
	"github.com/spf13/cobra"
)

const snapshotTimeout = 10 * time.Second

// snapshot waits for the first report list delivered by a subscription.
func snapshot(ctx context.Context, repo repository.Repository) ([]model.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	got := make(chan []model.Report, 1)
	failed := make(chan error, 1)
	unsubscribe := repo.Subscribe(ctx,
		func(rs []model.Report) {
			select {
			case got <- rs:
			default:
			}
		},
		func(err error) {
			select {
			case failed <- err:
			default:
			}
		})
	defer unsubscribe()

	select {
	case rs := <-got:
		return rs, nil
	case err := <-failed:
		return nil, fmt.Errorf("subscribe: %w", err)
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for reports: %w", ctx.Err())
	}
}

func newReportsCmd(c *cli) *cobra.Command {
	var filter browse.Filter
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List persisted reports grouped by player",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := c.openRepository(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			reports, err := snapshot(cmd.Context(), repo)
			if err != nil {
				return err
			}
			groups := browse.Build(reports, filter)
			printGroups(c, groups)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Search, "search", "", "match player name or club")
	cmd.Flags().StringVar(&filter.PositionID, "position", "", "only players with a report at this position id")
	return cmd
}

func printGroups(c *cli, groups []browse.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(c.out, "No reports found.")
		return
	}

	p := newPalette(c.out)
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Key\tPlayer\tClub\tPositions\tReports\tOverall")
	fmt.Fprintln(w, "---\t------\t----\t---------\t-------\t-------")
	for i := range groups {
		g := &groups[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			g.Key, g.Name, dash(g.Club), dash(strings.Join(g.Positions, ", ")), len(g.Reports), p.grade(g.Overall, g.Graded))
	}
	_ = w.Flush()
	fmt.Fprintf(c.out, "\n%d player(s) found.\n", len(groups))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
