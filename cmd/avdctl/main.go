// Command avdctl runs maintenance tasks against the AVD database: schema
// migrations, seed data and manual job runs.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"avd/internal/app/server"
	"avd/internal/domain/auth"
	"avd/internal/platform/config"
	"avd/internal/platform/db"
	"avd/internal/platform/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type cli struct {
	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "avdctl",
		Short:        "AVD maintenance commands",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.cfg = config.Load()
			log, err := logger.New(c.cfg.Environment, c.cfg.LogLevel)
			if err != nil {
				return err
			}
			c.log = log
			zap.ReplaceGlobals(log)
			return c.cfg.Validate()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}
	root.AddCommand(c.migrateCmd(), c.seedCmd(), c.jobsCmd())
	return root
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := db.Connect(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			return db.Migrate(ctx, pool, c.log)
		},
	}
}

func (c *cli) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the admin user and base competencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := db.Connect(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			return db.Seed(ctx, pool, c.cfg, auth.HashPassword)
		},
	}
}

func (c *cli) jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and run background jobs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered jobs and their schedules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(ctx context.Context, app *server.App) error {
				for _, j := range app.Scheduler.Jobs() {
					fmt.Fprintf(cmd.OutOrStdout(), "%-32s %s\n", j.Name, j.Spec)
				}
				return nil
			})
		},
	})

	var date string
	run := &cobra.Command{
		Use:   "run <name>",
		Short: "Run a job now",
		Long: `Run a registered job immediately and print its summary.

--date sets the as-of day (YYYY-MM-DD). The discrepancy job analyses the
day before it, so --date 2026-03-10 checks 2026-03-09.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at := time.Now()
			if date != "" {
				parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				at = parsed
			}
			return c.withApp(cmd.Context(), func(ctx context.Context, app *server.App) error {
				result, err := app.Scheduler.RunNow(ctx, args[0], at)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			})
		},
	}
	run.Flags().StringVar(&date, "date", "", "as-of day, YYYY-MM-DD (default today)")
	cmd.AddCommand(run)
	return cmd
}

// withApp builds the full service graph without migrating or seeding.
func (c *cli) withApp(parent context.Context, fn func(ctx context.Context, app *server.App) error) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := c.cfg
	cfg.RunMigrations = false
	cfg.RunSeed = false
	app, err := server.New(ctx, cfg, c.log)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}
