package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/mock-booking-api/internal/config"
)

// bucketScript refills and takes one token from the bucket stored in a
// Redis hash.  It returns {allowed, tokens left, retry after in ms}.
var bucketScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])
local ttl_ms = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'refilled_at')
local tokens = tonumber(state[1]) or capacity
local refilled_at = tonumber(state[2]) or now

if interval > 0 then
  local steps = math.floor(math.max(0, now - refilled_at) / interval)
  if steps > 0 then
    tokens = math.min(capacity, tokens + steps * refill)
    refilled_at = refilled_at + steps * interval
  end
end

local allowed = 0
local retry = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  retry = math.max(0, interval - (now - refilled_at))
end

redis.call('HSET', key, 'tokens', tokens, 'refilled_at', refilled_at)
redis.call('PEXPIRE', key, ttl_ms)
return {allowed, tokens, retry}
`)

// bucketResult is the decoded reply of bucketScript.
type bucketResult struct {
	allowed    bool
	remaining  int64
	retryAfter time.Duration
}

// RateLimit throttles API calls with a Redis token bucket shared by every
// API process.  Health checks and WebSocket upgrades are never limited, and
// booking reads and writes draw from separate buckets.  With limiting
// disabled or no Redis client it is a pass-through; Redis errors fail open.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if !cfg.Enabled || rdb == nil {
			return next
		}
		return func(c echo.Context) error {
			if skipRateLimit(c) {
				return next(c)
			}
			key := rateKey(cfg, c)
			reply, err := bucketScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				cfg.TTL.Milliseconds(),
			).Result()
			if err != nil {
				log.Printf("ratelimit: redis error for %s: %v", key, err)
				return next(c)
			}
			res, err := parseBucket(reply)
			if err != nil {
				log.Printf("ratelimit: %s: %v", key, err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if res.allowed {
				return next(c)
			}

			secs := int((res.retryAfter + time.Second - 1) / time.Second)
			h.Set("Retry-After", strconv.Itoa(secs))
			if cfg.Debug {
				log.Printf("ratelimit: blocked %s, retry in %s", key, res.retryAfter)
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

// skipRateLimit exempts health checks and WebSocket upgrades; an open
// echo connection is a single request however many messages it carries.
func skipRateLimit(c echo.Context) bool {
	if c.Path() == "/healthz" || c.Path() == "/ws" {
		return true
	}
	return strings.EqualFold(c.Request().Header.Get(echo.HeaderUpgrade), "websocket")
}

// parseBucket decodes the script reply.  go-redis returns Lua numbers as
// int64.
func parseBucket(v any) (bucketResult, error) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 3 {
		return bucketResult{}, fmt.Errorf("unexpected script reply %#v", v)
	}
	var n [3]int64
	for i, x := range arr {
		if n[i], ok = x.(int64); !ok {
			return bucketResult{}, fmt.Errorf("unexpected script reply %#v", v)
		}
	}
	return bucketResult{
		allowed:    n[0] == 1,
		remaining:  n[1],
		retryAfter: time.Duration(n[2]) * time.Millisecond,
	}, nil
}

// routeClass names the bucket a request draws from.  Booking reads are the
// hot path under load and get their own bucket apart from booking writes.
func routeClass(c echo.Context) string {
	path := c.Path()
	switch {
	case path == "/booking/:id" && c.Request().Method == http.MethodGet:
		return "booking-read"
	case path == "/booking" || path == "/booking/:id":
		return "booking-write"
	case path == "/clear-booking-cache":
		return "booking-cache"
	case path == "/auth":
		return "auth"
	case strings.HasPrefix(path, "/update-profile"):
		return "profile"
	case path == "":
		return "unmatched"
	}
	return c.Request().Method + " " + path
}

// rateKey builds the Redis key from the configured strategy, a combination
// of caller IP, username and route class.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	user := currentUser(c)
	route := routeClass(c)

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", user)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", user)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "user_route":
		parts = append(parts, "user", user, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", user, "route", route)
	}
	return strings.Join(parts, ":")
}
