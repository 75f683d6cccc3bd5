package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCheckRateLimit(t *testing.T) {
	t.Run("bypassed outside production", func(t *testing.T) {
		for _, env := range []string{"test", "development", "stress"} {
			t.Setenv("APP_ENV", env)
			allowed, err := CheckRateLimit(context.Background(), nil, "test", "1", 1, time.Minute)
			assert.NoError(t, err)
			assert.True(t, allowed, env)
		}
	})

	t.Run("nil redis errors in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		allowed, err := CheckRateLimit(context.Background(), nil, "test", "1", 1, time.Minute)
		assert.Error(t, err)
		assert.False(t, allowed)
	})

	t.Run("fixed window counter", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		mr, rdb := newTestRedis(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)

		assert.True(t, mr.TTL("rl:login:ip:1.2.3.4") > 0)
		mr.FastForward(time.Minute + time.Second)

		allowed, err = CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	t.Run("bypass in test mode", func(t *testing.T) {
		t.Setenv("APP_ENV", "test")
		app := fiber.New()
		app.Get("/test", RateLimit(nil, 1, time.Minute), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("FailOpen with nil redis in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		app := fiber.New()
		app.Get("/test", RateLimit(nil, 1, time.Minute), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("FailClosed with nil redis in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		app := fiber.New()
		app.Get("/sensitive", RateLimitWithPolicy(nil, 1, time.Minute, FailClosed), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sensitive", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("rejects once the window is exhausted", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, rdb := newTestRedis(t)
		app := fiber.New()
		app.Post("/login", RateLimit(rdb, 2, time.Minute, "login"), ok)

		statuses := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
			require.NoError(t, err)
			statuses = append(statuses, resp.StatusCode)
			if resp.StatusCode == http.StatusTooManyRequests {
				assert.Equal(t, "60", resp.Header.Get(fiber.HeaderRetryAfter))
			}
			_ = resp.Body.Close()
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
	})
}
