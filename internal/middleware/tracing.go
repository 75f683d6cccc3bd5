package middleware

import (
	"fmt"

	"agora/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware starts a server span per request and exposes its trace ID.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		ctx, span := observability.Tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.path", c.Path()),
				attribute.String("http.ip", c.IP()),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		if requestID := c.Locals("requestid"); requestID != nil {
			span.SetAttributes(attribute.String("request.id", fmt.Sprintf("%v", requestID)))
		}
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if err != nil {
			span.RecordError(err)
		}
		if err != nil || status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "request failed")
		}
		if userID := c.Locals("userID"); userID != nil {
			span.SetAttributes(attribute.String("user.id", fmt.Sprintf("%v", userID)))
		}
		return err
	}
}
