package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotdesk/internal/config"
	"github.com/iliyamo/hotdesk/internal/handler"
	"github.com/iliyamo/hotdesk/internal/metrics"
	"github.com/iliyamo/hotdesk/internal/middleware"
	"github.com/iliyamo/hotdesk/internal/repository"
	"github.com/iliyamo/hotdesk/internal/service"
)

func newApp(t *testing.T, limit config.RateLimitConfig) *echo.Echo {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := zerolog.Nop()
	store := repository.NewMemoryStore()
	svc := service.NewBookingService(store.Desks(), store.Bookings(), log)
	_, err := svc.SeedDesks(context.Background(), []string{"A-01"})
	require.NoError(t, err)

	cache := middleware.NewResponseCache(config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{http.MethodGet: true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "cache",
	}, rdb, log)
	svc.Cache = cache

	metrics.Register()
	e := New(log)
	RegisterRoutes(e, &handler.ReadyHandler{Redis: rdb})
	RegisterAPI(e, API{
		Desks:     &handler.DeskHandler{Service: svc, Log: log},
		Bookings:  &handler.BookingHandler{Service: svc, Log: log},
		RateLimit: middleware.NewTokenBucket(limit, rdb, log),
		Cache:     cache,
	})
	return e
}

func relaxed() config.RateLimitConfig {
	return config.RateLimitConfig{Enabled: false}
}

func call(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestOperationalRoutes(t *testing.T) {
	e := newApp(t, relaxed())

	assert.Equal(t, "ok", call(e, http.MethodGet, "/healthz", "").Body.String())
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/readyz", "").Code)

	call(e, http.MethodGet, "/v1/desks", "")
	rec := call(e, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hotdesk_http_requests_total{method="GET",route="/v1/desks",status="200"}`)
}

func TestBookingListingCacheIsPurgedOnCreate(t *testing.T) {
	e := newApp(t, relaxed())

	first := call(e, http.MethodGet, "/v1/bookings", "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", call(e, http.MethodGet, "/v1/bookings", "").Header().Get("X-Cache"))

	created := call(e, http.MethodPost, "/v1/bookings", `{"name":"alice","desk_id":1,"date":"2026-01-15","from":"09:00","until":"10:00"}`)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	after := call(e, http.MethodGet, "/v1/bookings", "")
	assert.Equal(t, "MISS", after.Header().Get("X-Cache"))
	assert.Contains(t, after.Body.String(), `"total":1`)
}

func TestDeskStatusIsNotCached(t *testing.T) {
	e := newApp(t, relaxed())
	call(e, http.MethodGet, "/v1/desks", "")
	assert.Empty(t, call(e, http.MethodGet, "/v1/desks", "").Header().Get("X-Cache"))
}

func TestRateLimitAppliesToAPI(t *testing.T) {
	e := newApp(t, config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            5 * time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	})

	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/v1/desks", "").Code)
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/v1/desks", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, call(e, http.MethodGet, "/v1/desks", "").Code)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/healthz", "").Code, "probes are not limited")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	e := newApp(t, relaxed())
	req := httptest.NewRequest(http.MethodGet, "/v1/desks", nil)
	req.Header.Set(middleware.HeaderRequestID, "abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(middleware.HeaderRequestID))
}
