// Package handler exposes the HTTP handlers for desks, bookings and probes.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems to verify that the process is running.  It returns a
// plain text "ok" with status 200.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ReadyHandler reports whether the backing services answer.  DB is nil
// for the in-memory store and Redis is nil when it is not configured.
type ReadyHandler struct {
	DB      Pinger
	Redis   *redis.Client
	Timeout time.Duration
}

// Ready pings every configured dependency and answers 503 on the first
// failure.
func (h *ReadyHandler) Ready(c echo.Context) error {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "error": "database unreachable"})
		}
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "error": "redis unreachable"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
}
