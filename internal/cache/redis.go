// Package cache provides the Redis client used for rate limiting and token revocation.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/internal/middleware"
	"agora/internal/observability"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// NewClient builds a client from a redis:// URL or a bare host:port address.
func NewClient(addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	c := redis.NewClient(opts)
	c.AddHook(metricsHook{})
	return c, nil
}

// InitRedis initializes the Redis client with the given address.
// An empty or unreachable address leaves the client nil and the API runs without Redis.
func InitRedis(addr string) {
	client = nil
	if strings.TrimSpace(addr) == "" {
		middleware.Logger.Info("REDIS_URL not set, running without redis")
		return
	}

	c, err := NewClient(addr)
	if err != nil {
		middleware.Logger.Warn("invalid REDIS_URL, continuing without redis", slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("redis connection failed, continuing without redis", slog.String("error", err.Error()))
		_ = c.Close()
		return
	}
	middleware.Logger.Info("Redis connected successfully")
	client = c
}

// GetClient returns the current Redis client instance.
func GetClient() *redis.Client {
	return client
}
