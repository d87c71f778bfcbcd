package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/color-game/consolidation/api"
	"github.com/color-game/consolidation/consolidation"
	"github.com/color-game/consolidation/datastore"
	"github.com/color-game/consolidation/migrations"
	"github.com/color-game/consolidation/models"
	"github.com/color-game/consolidation/scheduler"
)

// openDatabase connects with the configured driver. For sqlite DB_NAME is the
// database file path.
func openDatabase(config api.Config) (*sql.DB, error) {
	connStr := config.DatabaseName
	if config.DatabaseType == datastore.Postgres {
		connStr = datastore.BuildDBConnStr(
			config.DatabasePassword,
			config.DatabaseUser,
			config.DatabaseHost,
			config.DatabaseName,
			config.SSLMode,
		)
	}

	db, err := datastore.NewDB(config.DatabaseType, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func newServeCmd() *cobra.Command {
	var palettePath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and keep runs in step with the palette file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if palettePath != "" {
				config.PalettePath = palettePath
			}
			if config.AdminPasswordHash == "" {
				slog.Warn("ADMIN_PASSWORD_HASH is not set; admin endpoints will reject every login")
			}

			dbConn, err := openDatabase(config)
			if err != nil {
				return err
			}
			defer dbConn.Close()

			slog.Info("running database migrations")
			if err := migrations.RunMigrations(dbConn, config.DatabaseType); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			runRepo, err := datastore.NewRunDatabase(dbConn, config.DatabaseType)
			if err != nil {
				return fmt.Errorf("failed to create run repository: %w", err)
			}
			statsRepo, err := datastore.NewBucketStatsDatabase(dbConn, config.DatabaseType)
			if err != nil {
				return fmt.Errorf("failed to create bucket stats repository: %w", err)
			}

			pipeline := consolidation.NewPipeline(config.Thresholds, config.Workers)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			paletteScheduler := scheduler.NewScheduler(config.PalettePath, pipeline, runRepo, statsRepo)
			paletteScheduler.Interval = config.RescanInterval
			if err := paletteScheduler.Start(ctx); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer paletteScheduler.Stop()

			app := &api.Application{
				Config:          config,
				RunRepo:         runRepo,
				BucketStatsRepo: statsRepo,
				Palettes:        paletteScheduler,
				Pipeline:        pipeline,
				Logger:          slog.Default(),
			}

			return app.Serve(ctx, http.NewServeMux())
		},
	}

	cmd.Flags().StringVar(&palettePath, "palette", "", "palette file to watch (overrides PALETTE_PATH)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			dbConn, err := openDatabase(config)
			if err != nil {
				return err
			}
			defer dbConn.Close()

			return migrations.RunMigrations(dbConn, config.DatabaseType)
		},
	}
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password PASSWORD",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := models.GenerateHash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
