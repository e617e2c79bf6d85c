package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"borehole-workflow/internal/boreholes"
	"borehole-workflow/internal/config"
	"borehole-workflow/internal/database"
	"borehole-workflow/internal/handlers"
	"borehole-workflow/internal/lock"
	"borehole-workflow/internal/logging"
	"borehole-workflow/internal/metrics"
	"borehole-workflow/internal/server"
	"borehole-workflow/internal/workflow"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func rootCommand() *cobra.Command {
	var configFiles []string

	root := &cobra.Command{
		Use:           "server",
		Short:         "Borehole review and publication workflow API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVarP(&configFiles, "config", "c", nil, "optional yaml config files")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(configFiles)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the schema and seed the default users",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(configFiles)
			if err != nil {
				return err
			}
			return migrate(cfg)
		},
	}

	root.AddCommand(serveCmd, migrateCmd)
	// serve is the default
	root.RunE = serveCmd.RunE
	return root
}

func setup(files []string) (*config.Config, error) {
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.Log.Level, config.Enabled(cfg.Log.JSON))

	err = database.Init(database.Options{
		Driver:      cfg.Database.Driver,
		DSN:         cfg.Database.DSN,
		MaxAttempts: cfg.Database.MaxAttempts,
		RetryDelay:  cfg.RetryDelay(),
		Debug:       config.Enabled(cfg.Database.Debug),
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func migrate(cfg *config.Config) error {
	if err := database.Migrate(database.DB); err != nil {
		return err
	}
	if err := database.SeedAdmin(database.DB, cfg.Seed.AdminUsername, cfg.Seed.AdminPassword); err != nil {
		return err
	}
	if config.Enabled(cfg.Seed.DemoUsers) {
		if err := database.SeedDemoUsers(database.DB); err != nil {
			return err
		}
	}
	log.Info("database migrated")
	return nil
}

func policyFromConfig(cfg *config.Config) workflow.Policy {
	return workflow.Policy{
		RequireReviewedTabsComplete:  config.Enabled(cfg.Workflow.RequireReviewedTabsComplete),
		RequirePublishedTabsComplete: config.Enabled(cfg.Workflow.RequirePublishedTabsComplete),
		ProtectPublishedTabs:         config.Enabled(cfg.Workflow.ProtectPublishedTabs),
		ValidatorCanPublish:          config.Enabled(cfg.Workflow.ValidatorCanPublish),
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.Enabled(cfg.Database.MigrateOnStart) {
		if err := migrate(cfg); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		return err
	}

	db := database.DB
	workflows := workflow.NewService(db, policyFromConfig(cfg), workflow.WithMetrics(m))
	locks := lock.NewManager(db, cfg.LockTTL(), lock.WithMetrics(m))
	users := database.NewUserStore(db)
	h := handlers.New(users, boreholes.NewService(db, workflows, locks), workflows, locks)

	if cfg.Lock.SweepSchedule != "" {
		sweeper, err := lock.NewSweeper(locks, cfg.Lock.SweepSchedule)
		if err != nil {
			return err
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	srv := &http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler: server.NewRouter(cfg, server.Deps{
			DB:       db,
			Handler:  h,
			Users:    users,
			Gatherer: registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "server error")
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	return nil
}
