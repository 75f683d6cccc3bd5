package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"agora/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

// rateLimitBypassed reports whether throttling is disabled for the current APP_ENV.
func rateLimitBypassed() bool {
	switch os.Getenv("APP_ENV") {
	case "test", "development", "stress":
		return true
	}
	return false
}

// CheckRateLimit checks if a resource has exceeded its rate limit using a fixed window counter.
// Returns true if allowed, false if limit exceeded.
// Rate limiting is disabled when APP_ENV is "test", "development" or "stress".
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rateLimitBypassed() {
		return true, nil
	}
	if rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	pipe := rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}

// RateLimit returns a Fiber middleware enforcing `limit` requests per `window`.
// It keys by authenticated userID (if set in c.Locals("userID")) otherwise by remote IP.
// It defaults to FailOpen policy.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy returns a Fiber middleware enforcing `limit` requests per `window` with a specific failure policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id string
		if uid, ok := c.Locals("userID").(uint); ok {
			id = "user:" + strconv.FormatUint(uint64(uid), 10)
		} else {
			id = "ip:" + c.IP()
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, resource, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable, failing closed",
					slog.String("resource", resource),
					slog.String("path", c.Path()),
					slog.String("error", err.Error()),
				)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			observability.RateLimitRejections.WithLabelValues(resource).Inc()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
