package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Namra404/secunda/config"
	"github.com/Namra404/secunda/pkg/database"
	"github.com/Namra404/secunda/pkg/health"
)

const (
	DependencyDatabase   = "database"
	DependencyMigrations = "migrations"
	DependencyHTTP       = "http"
)

// DatabaseDependency opens the connection pool.
type DatabaseDependency struct {
	config database.ConnectionConfig
	logger ectologger.Logger
	db     *database.DatabaseInstance
}

func NewDatabaseDependency(config database.ConnectionConfig, logger ectologger.Logger) *DatabaseDependency {
	return &DatabaseDependency{config: config, logger: logger}
}

func (d *DatabaseDependency) GetName() string     { return DependencyDatabase }
func (d *DatabaseDependency) DependsOn() []string { return nil }

func (d *DatabaseDependency) Start(ctx context.Context) error {
	db, err := database.Connect(ctx, d.config, d.logger)
	if err != nil {
		return err
	}
	d.db = db
	return nil
}

func (d *DatabaseDependency) Stop(ctx context.Context) error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// DB is nil until Start succeeds.
func (d *DatabaseDependency) DB() *database.DatabaseInstance {
	return d.db
}

// MigrationDependency applies the schema before traffic is served.
type MigrationDependency struct {
	database *DatabaseDependency
	service  *database.MigrationService
	name     string
}

func NewMigrationDependency(db *DatabaseDependency, config *database.MigrationConfig, databaseName string, logger ectologger.Logger) *MigrationDependency {
	return &MigrationDependency{
		database: db,
		service:  database.NewMigrationService(logger, config),
		name:     databaseName,
	}
}

func (m *MigrationDependency) GetName() string     { return DependencyMigrations }
func (m *MigrationDependency) DependsOn() []string { return []string{DependencyDatabase} }

func (m *MigrationDependency) Start(ctx context.Context) error {
	return m.service.MigratePostgres(m.database.DB().DB.DB, m.name)
}

func (m *MigrationDependency) Stop(ctx context.Context) error { return nil }

// HTTPDependency serves the API once the schema is in place.
type HTTPDependency struct {
	config   *config.Config
	database *DatabaseDependency
	logger   ectologger.Logger
	echo     *echo.Echo
	server   *http.Server
	checker  *health.Checker
	version  string
}

func NewHTTPDependency(cfg *config.Config, db *DatabaseDependency, version string, logger ectologger.Logger) *HTTPDependency {
	return &HTTPDependency{config: cfg, database: db, version: version, logger: logger}
}

func (h *HTTPDependency) GetName() string { return DependencyHTTP }
func (h *HTTPDependency) DependsOn() []string {
	return []string{DependencyDatabase, DependencyMigrations}
}

func (h *HTTPDependency) Start(ctx context.Context) error {
	db := h.database.DB()
	h.checker = health.NewChecker(db, h.version)
	h.echo = New(h.config, db, h.checker, h.logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", h.config.Port),
		ReadTimeout:       time.Duration(h.config.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(h.config.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(h.config.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(h.config.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    h.config.MaxHeaderBytes,
	}

	// bind before returning so a taken port fails Start and reaches the retry loop
	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}
	h.echo.Listener = listener
	h.server = srv

	go func() {
		if err := h.echo.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.WithError(err).Error("HTTP server stopped unexpectedly")
			h.checker.SetReady(false)
		}
	}()

	h.checker.SetReady(true)
	h.logger.WithField("port", h.config.Port).Info("HTTP server listening")
	return nil
}

func (h *HTTPDependency) Stop(ctx context.Context) error {
	if h.server == nil {
		return nil
	}
	h.checker.SetReady(false)
	return h.server.Shutdown(ctx)
}
