// Package health answers the liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

const databaseTimeout = 5 * time.Second

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

type Response struct {
	Status     Status                 `json:"status"`
	Version    string                 `json:"version,omitempty"`
	Uptime     string                 `json:"uptime,omitempty"`
	Checks     map[string]CheckResult `json:"checks,omitempty"`
	ReportedAt time.Time              `json:"reported_at"`
}

// Pinger is satisfied by database.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Checker struct {
	db      Pinger
	started time.Time
	version string
	ready   atomic.Bool
}

func NewChecker(db Pinger, version string) *Checker {
	return &Checker{db: db, started: time.Now(), version: version}
}

// SetReady flips readiness; it is false until startup completes and again during shutdown.
func (c *Checker) SetReady(ready bool) {
	c.ready.Store(ready)
}

func (c *Checker) IsReady() bool {
	return c.ready.Load()
}

func (c *Checker) Live(ctx context.Context) Response {
	return c.response(StatusHealthy, nil)
}

// Ready returns the probe body together with the HTTP status to answer with.
func (c *Checker) Ready(ctx context.Context) (int, Response) {
	if !c.IsReady() {
		return http.StatusServiceUnavailable, c.response(StatusUnhealthy, map[string]CheckResult{
			"startup": {Status: StatusUnhealthy, Message: "service is still starting up"},
		})
	}

	database := c.pingDatabase(ctx)
	if database.Status == StatusUnhealthy {
		return http.StatusServiceUnavailable, c.response(StatusUnhealthy, map[string]CheckResult{"database": database})
	}
	return http.StatusOK, c.response(StatusHealthy, map[string]CheckResult{"database": database})
}

func (c *Checker) response(status Status, checks map[string]CheckResult) Response {
	return Response{
		Status:     status,
		Version:    c.version,
		Uptime:     time.Since(c.started).Round(time.Second).String(),
		Checks:     checks,
		ReportedAt: time.Now().UTC(),
	}
}

func (c *Checker) pingDatabase(ctx context.Context) CheckResult {
	if c.db == nil {
		return CheckResult{Status: StatusUnhealthy, Message: "database not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()

	start := time.Now()
	err := c.db.PingContext(ctx)
	result := CheckResult{Status: StatusHealthy, Latency: time.Since(start).String()}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Message = err.Error()
	}
	return result
}

func (c *Checker) LiveHandler(ec echo.Context) error {
	return ec.JSON(http.StatusOK, c.Live(ec.Request().Context()))
}

func (c *Checker) ReadyHandler(ec echo.Context) error {
	code, response := c.Ready(ec.Request().Context())
	return ec.JSON(code, response)
}
