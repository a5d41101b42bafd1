package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/iliyamo/hotdesk/internal/config"
)

var limiterScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		local until_next = interval_ms - (now_ms - last_refill)
		if until_next < 0 then until_next = 0 end
		retry_after_ms = until_next
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill, 'capacity', capacity)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// NewTokenBucket returns a rate limiting middleware.  With a Redis client
// the bucket state is shared between instances through a Lua script;
// without one each process keeps its own golang.org/x/time/rate limiters.
// Redis errors let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log zerolog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	var take func(c echo.Context, key string) (allowed bool, remaining int64, retry time.Duration, err error)
	if rdb != nil {
		take = redisTake(cfg, rdb)
	} else {
		take = newLocalBuckets(cfg).take
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			allowed, remaining, retry, err := take(c, key)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("rate limit check failed")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}

			if !allowed {
				secs := int(math.Ceil(retry.Seconds()))
				if secs < 0 {
					secs = 0
				}
				h.Set("Retry-After", strconv.Itoa(secs))
				if cfg.Debug {
					log.Debug().Str("key", key).Dur("retry", retry).Msg("rate limited")
				}
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "rate limit exceeded",
					"code":        "too_many_requests",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

func redisTake(cfg config.RateLimitConfig, rdb *redis.Client) func(echo.Context, string) (bool, int64, time.Duration, error) {
	return func(c echo.Context, key string) (bool, int64, time.Duration, error) {
		args := []interface{}{
			time.Now().UnixMilli(),
			cfg.Capacity,
			cfg.RefillTokens,
			cfg.RefillInterval.Milliseconds(),
			int64(cfg.TTL / time.Second),
		}
		vals, err := limiterScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
		if err != nil {
			return false, 0, 0, err
		}
		arr, ok := vals.([]interface{})
		if !ok || len(arr) != 3 {
			return false, 0, 0, fmt.Errorf("unexpected script result %#v", vals)
		}
		allowed := asInt64(arr[0]) == 1
		return allowed, asInt64(arr[1]), time.Duration(asInt64(arr[2])) * time.Millisecond, nil
	}
}

// localBuckets holds one limiter per key.  Idle limiters are dropped once
// they are older than the configured TTL.
type localBuckets struct {
	mu    sync.Mutex
	cfg   config.RateLimitConfig
	every rate.Limit
	items map[string]*localBucket
	sweep time.Time
}

type localBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLocalBuckets(cfg config.RateLimitConfig) *localBuckets {
	return &localBuckets{
		cfg:   cfg,
		every: rate.Limit(float64(cfg.RefillTokens) / cfg.RefillInterval.Seconds()),
		items: make(map[string]*localBucket),
		sweep: time.Now(),
	}
}

func (b *localBuckets) take(_ echo.Context, key string) (bool, int64, time.Duration, error) {
	now := time.Now()
	b.mu.Lock()
	if now.Sub(b.sweep) > b.cfg.TTL {
		for k, it := range b.items {
			if now.Sub(it.seen) > b.cfg.TTL {
				delete(b.items, k)
			}
		}
		b.sweep = now
	}
	it, ok := b.items[key]
	if !ok {
		it = &localBucket{lim: rate.NewLimiter(b.every, b.cfg.Capacity)}
		b.items[key] = it
	}
	it.seen = now
	b.mu.Unlock()

	r := it.lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay, nil
	}
	remaining := int64(it.lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining, 0, nil
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// buildRateKey derives the bucket key from the client address and route
// according to cfg.KeyStrategy.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := []string{cfg.Prefix}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "route":
		parts = append(parts, "route", route)
	case "global":
		parts = append(parts, "global")
	default: // "ip_route"
		parts = append(parts, "ip", ip, "route", route)
	}
	return strings.Join(parts, ":")
}
