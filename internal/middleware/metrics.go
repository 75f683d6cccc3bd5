package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

var (
	promOnce     sync.Once
	promInstance *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide fiberprometheus collector.
// The HTTP collectors register against the default registry, so only the first
// service name wins.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInstance = fiberprometheus.New(serviceName)
	})
	return promInstance
}

// MetricsMiddleware records request count and latency for every route except /metrics itself.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	handler := prom.Middleware
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return handler(c)
	}
}
