package middleware

import (
	"time"

	applogger "MarketPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging writes one line per request with status and latency.
// Prometheus scrapes of /metrics are skipped to keep the log readable.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if l == nil || c.Request().URL.Path == "/metrics" {
				return err
			}
			l.Info("http request",
				applogger.String("method", c.Request().Method),
				applogger.String("path", c.Request().RequestURI),
				applogger.String("remote", c.Request().RemoteAddr),
				applogger.Int("status", c.Response().Status),
				applogger.Duration("latency", time.Since(start)))
			return err
		}
	}
}
