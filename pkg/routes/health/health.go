package health

import (
	"github.com/labstack/echo/v4"

	"github.com/Namra404/secunda/pkg/health"
)

// Register registers the probe endpoints. They are served without an API key.
func Register(e *echo.Echo, checker *health.Checker) {
	e.GET("/health/live", checker.LiveHandler)
	e.GET("/health/ready", checker.ReadyHandler)
}
