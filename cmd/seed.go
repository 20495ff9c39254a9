package main

import (
	"fmt"

	"github.com/okian/scout/internal/config"
	"github.com/okian/scout/internal/seed"
	"github.com/okian/scout/pkg/logger"
	"github.com/spf13/cobra"
)

func newSeedCmd(c *cli) *cobra.Command {
	var (
		count     int
		seedValue int64
		gradeRate int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write generated demo reports to the configured store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if c.cfg.StoreBackend == config.BackendMemory {
				c.log.Warn(ctx, "memory store is discarded when the command exits", logger.String("store_backend", c.cfg.StoreBackend))
			}
			repo, err := c.openRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			ids, err := seed.Run(ctx, repo, count, c.log.Named("seed"),
				seed.WithSeed(seedValue), seed.WithGradeRate(gradeRate))
			fmt.Fprintf(c.out, "Seeded %d report(s) into %s\n", len(ids), c.cfg.StoreBackend)
			return err
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 25, "number of reports")
	cmd.Flags().Int64Var(&seedValue, "seed", 1, "random seed")
	cmd.Flags().IntVar(&gradeRate, "grade-rate", 80, "percentage of competencies that get a grade")
	return cmd
}
