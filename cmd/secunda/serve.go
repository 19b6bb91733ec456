package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Namra404/secunda/config"
	"github.com/Namra404/secunda/internal/logging"
	"github.com/Namra404/secunda/internal/server"
	"github.com/Namra404/secunda/pkg/startup"
	"github.com/Namra404/secunda/pkg/tracing"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, syncLogger, err := logging.New(cfg.LogLevel, cfg.PrettyLogs)
	if err != nil {
		return err
	}
	defer syncLogger()

	if cfg.TracingEnabled {
		shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
			ServiceName: cfg.AppName,
			Protocol:    cfg.TracingProtocol,
			Endpoint:    cfg.TracingEndpoint,
			Insecure:    cfg.TracingInsecure,
		}, logger)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdownTracing(flushCtx); err != nil {
				logger.WithError(err).Error("Failed to flush traces")
			}
		}()
	}

	db := server.NewDatabaseDependency(cfg.DatabaseConfig(), logger)
	deps := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	deps.AddDependency(db)
	deps.AddDependency(server.NewMigrationDependency(db, cfg.MigrationConfig(), cfg.DatabaseName, logger))
	deps.AddDependency(server.NewHTTPDependency(cfg, db, version, logger))

	logger.WithFields(map[string]any{"app": cfg.AppName, "version": version}).Info("Starting")
	if err := deps.Start(ctx); err != nil {
		logger.WithError(err).Error("Startup failed")
		_ = deps.Stop(context.Background())
		return err
	}

	<-ctx.Done()
	logger.Info("Shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return deps.Stop(stopCtx)
}
