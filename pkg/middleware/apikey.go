package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Namra404/secunda/pkg/context"
	"github.com/Namra404/secunda/pkg/tracing"
)

const (
	HeaderAPIKey = "X-API-Key"
	APIKeyScheme = "ApiKey"
)

// APIKey rejects requests whose X-API-Key header differs from key with 403.
// The skipper lets probes and metrics through without a key.
func APIKey(logger ectologger.Logger, key string, skipper func(c echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}

			ctx, span := tracing.StartSpan(c.Request().Context(), "middleware.APIKey")
			defer span.End()

			provided := c.Request().Header.Get(HeaderAPIKey)
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				logger.WithContext(ctx).WithField("remote_ip", c.RealIP()).Warn("request has a missing or invalid api key")
				return httperror.NewHTTPError(http.StatusForbidden, "could not validate credentials")
			}

			c.SetRequest(c.Request().WithContext(context.SetClient(c.Request().Context(), "api-key")))

			return next(c)
		}
	}
}
