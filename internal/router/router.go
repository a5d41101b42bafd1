// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotdesk/internal/handler"
	"github.com/iliyamo/hotdesk/internal/middleware"
)

// New returns an Echo instance with the request validator and the global
// middleware chain installed.
func New(log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(middleware.Metrics())
	return e
}

// RegisterRoutes registers the unversioned operational endpoints: the
// liveness probe, the readiness probe and the Prometheus scrape target.
func RegisterRoutes(e *echo.Echo, ready *handler.ReadyHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", ready.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// API bundles what the /v1 routes need.  RateLimit and Cache may be nil.
type API struct {
	Desks     *handler.DeskHandler
	Bookings  *handler.BookingHandler
	RateLimit echo.MiddlewareFunc
	Cache     *middleware.ResponseCache
}

// RegisterAPI registers the desk and booking endpoints under /v1.  Only
// booking listings go through the response cache; desk status depends
// on the current time.
func RegisterAPI(e *echo.Echo, api API) {
	g := e.Group("/v1")
	if api.RateLimit != nil {
		g.Use(api.RateLimit)
	}
	cached := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if api.Cache != nil {
		cached = api.Cache.Middleware()
	}

	g.GET("/desks", api.Desks.ListDesks)
	g.GET("/desks/:id", api.Desks.GetDesk)
	g.GET("/desks/:id/bookings", api.Desks.ListDeskBookings, cached)

	g.GET("/bookings", api.Bookings.ListBookings, cached)
	g.POST("/bookings", api.Bookings.CreateBooking)
	g.GET("/bookings/export.xlsx", api.Bookings.ExportBookings)
}
