package http

import (
	"time"

	"github.com/labstack/echo/v4"

	"ripple/backend/internal/logger"
)

// UserIDHeader carries the opaque user id assigned by the external identity
// provider. An absent header means an anonymous request; this service never
// validates identity itself.
const UserIDHeader = "X-User-ID"

// UserIDKey is the echo context key the identity middleware stores the
// caller's id under.
const UserIDKey = "userID"

// IdentityMiddleware propagates the caller-supplied user id into the
// request context so handlers and logs can attribute requests.
func IdentityMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID := c.Request().Header.Get(UserIDHeader); userID != "" {
				c.Set(UserIDKey, userID)
			}
			return next(c)
		}
	}
}

// RequestLoggerMiddleware logs HTTP requests using logger.
func RequestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			latency := time.Since(start)

			userID, _ := c.Get(UserIDKey).(string)

			status := res.Status
			result := "ok"
			if status >= 400 {
				result = "failed"
			}
			args := []any{
				"module", "http",
				"action", "request",
				"resource", "http",
				"result", result,
				"method", req.Method,
				"path", req.URL.Path,
				"status_code", status,
				"duration_ms", latency.Milliseconds(),
				"remote_ip", c.RealIP(),
				"user_id", userID,
			}
			switch {
			case status >= 500:
				logger.Error("http request", args...)
			case status >= 400:
				logger.Warn("http request", args...)
			default:
				logger.Debug("http request", args...)
			}

			return nil
		}
	}
}
