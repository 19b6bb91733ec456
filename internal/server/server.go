package server

import (
	"net/http"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Namra404/secunda/config"
	activityrepo "github.com/Namra404/secunda/internal/repositories/activity"
	buildingrepo "github.com/Namra404/secunda/internal/repositories/building"
	organizationrepo "github.com/Namra404/secunda/internal/repositories/organization"
	activityservice "github.com/Namra404/secunda/internal/services/activity"
	buildingservice "github.com/Namra404/secunda/internal/services/building"
	organizationservice "github.com/Namra404/secunda/internal/services/organization"
	"github.com/Namra404/secunda/pkg/database"
	"github.com/Namra404/secunda/pkg/health"
	"github.com/Namra404/secunda/pkg/middleware"
	activityroutes "github.com/Namra404/secunda/pkg/routes/activity"
	buildingroutes "github.com/Namra404/secunda/pkg/routes/building"
	healthroutes "github.com/Namra404/secunda/pkg/routes/health"
	organizationroutes "github.com/Namra404/secunda/pkg/routes/organization"
)

// publicPrefixes are served without an API key.
var publicPrefixes = []string{"/health", "/metrics"}

// New builds the HTTP surface on top of db: stores, services, handlers and the middleware chain.
func New(cfg *config.Config, db database.DB, checker *health.Checker, logger ectologger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(middleware.Context())
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(echomiddleware.Recover())
	e.Use(middleware.Logger(logger))
	if cfg.MetricsEnabled {
		e.Use(middleware.Metrics())
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
		AllowHeaders: cfg.AllowHeaders,
	}))
	if cfg.APIKey != "" {
		e.Use(middleware.APIKey(logger, cfg.APIKey, isPublic))
	} else {
		logger.Warn("API_KEY is empty, requests are not authenticated")
	}

	healthroutes.Register(e, checker)

	activities := activityrepo.NewRepository(db, logger)
	buildings := buildingrepo.NewRepository(db, logger)
	organizations := organizationrepo.NewRepository(db, activities, buildings, logger)

	api := e.Group("")
	activityroutes.NewHandler(activityservice.NewService(activities, logger)).RegisterRoutes(api)
	buildingroutes.NewHandler(buildingservice.NewService(buildings, logger)).RegisterRoutes(api)
	organizationroutes.NewHandler(organizationservice.NewService(organizations, logger)).RegisterRoutes(api)

	return e
}

func isPublic(c echo.Context) bool {
	path := c.Request().URL.Path
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return c.Request().Method == http.MethodOptions
}
