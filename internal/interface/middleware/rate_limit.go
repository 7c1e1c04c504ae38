package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/medli/medli-api/pkg/response"
)

const (
	MsgTooManyRequests     = "Too many requests from this IP, please try again later."
	MsgTooManyAuthAttempts = "Too many authentication attempts, please try again later."
)

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP limits by client IP. Limiters sharing a prefix share their counters.
func KeyByIP(prefix string) KeyFunc {
	return func(c *gin.Context) string {
		return "rl:" + prefix + ":ip:" + ClientIP(c)
	}
}

// Lua script: atomic INCR + set PEXPIRE when the key is new
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// Gives a hit back without creating a key whose window already expired.
var refundScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return redis.call("DECR", KEYS[1])
end
return 0
`)

type AllowFunc func(*gin.Context) bool // return true for bypass limit

type RateLimitConfig struct {
	Max    int
	Window time.Duration
	Key    KeyFunc
	Allow  AllowFunc
	// Message is the 429 error text.
	Message string
	// SkipSuccessful refunds requests that finish with a status below 400,
	// so only failed attempts count.
	SkipSuccessful bool
	Logger         logrus.FieldLogger
}

// RateLimit is a fixed-window limiter on Redis with:
// - atomic redis (lua)
// - X-RateLimit-* headers and Retry-After
// - optional allowlist bypass
// It fails open when Redis is unavailable.
func RateLimit(rdb *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	if rdb == nil || cfg.Max <= 0 || cfg.Window <= 0 || cfg.Key == nil {
		return func(c *gin.Context) { c.Next() }
	}
	msg := cfg.Message
	if msg == "" {
		msg = MsgTooManyRequests
	}
	return func(c *gin.Context) {
		if cfg.Allow != nil && cfg.Allow(c) {
			c.Next()
			return
		}
		// CORS preflights are not counted
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := cfg.Key(c)

		count, err := incrExpireScript.Run(ctx, rdb, []string{key}, cfg.Window.Milliseconds()).Int()
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.WithError(err).WithField("key", key).Warn("rate limiter unavailable")
			}
			c.Next()
			return
		}

		ttl, _ := rdb.PTTL(ctx, key).Result()
		resetSec := 0
		if ttl > 0 {
			resetSec = int((ttl + time.Second - 1) / time.Second)
		}
		remaining := cfg.Max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > cfg.Max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Abort(c, http.StatusTooManyRequests, msg)
			return
		}

		c.Next()

		if cfg.SkipSuccessful && c.Writer.Status() < http.StatusBadRequest {
			if err := refundScript.Run(ctx, rdb, []string{key}).Err(); err != nil && cfg.Logger != nil {
				cfg.Logger.WithError(err).WithField("key", key).Warn("rate limit refund failed")
			}
		}
	}
}
