package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/config"
	"github.com/okian/scout/pkg/logger"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// cli carries what every subcommand needs once the root has run.
type cli struct {
	out        io.Writer
	configPath string
	cfg        *config.Config
	log        logger.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:   "scout",
		Short: "Football scouting reports with autosave and PDF export",
		Long: `scout keeps scouting report drafts, saves them to a shared report store
after a short quiet period, and groups persisted reports by player.

Configuration is read from defaults, then the YAML file named by --config or
SCOUT_CONFIG, then SCOUT_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Context())
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (overrides SCOUT_CONFIG)")

	root.AddCommand(
		newServeCmd(c),
		newPositionsCmd(c),
		newReportsCmd(c),
		newExportCmd(c),
		newSeedCmd(c),
		newVersionCmd(c),
	)
	return root
}

func (c *cli) setup(ctx context.Context) error {
	if c.configPath != "" {
		if err := os.Setenv(config.EnvConfigFile, c.configPath); err != nil {
			return fmt.Errorf("set %s: %w", config.EnvConfigFile, err)
		}
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.cfg = cfg

	if err := logger.Init(logger.WithOutput(os.Stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	c.log = logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		c.log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

func (c *cli) openRepository(ctx context.Context) (repository.Repository, error) {
	repo, err := repository.Open(ctx, c.cfg, c.log.Named("repository"))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s repository: %w", c.cfg.StoreBackend, err)
	}
	return repo, nil
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(c.out, "scout version %s\n", Version)
		},
	}
}
