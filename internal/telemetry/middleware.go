package telemetry

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "liftlog-api"

// UserIDHeader carries the caller identity resolved by the upstream gateway
const UserIDHeader = "X-User-ID"

// FiberMiddleware returns a Fiber middleware that traces HTTP requests.
// The span is renamed to the matched route template once routing is done so
// that /v1/me/sets/:id doesn't explode into one span name per set.
func FiberMiddleware() fiber.Handler {
	tracer := otel.Tracer(tracerName)
	propagator := otel.GetTextMapPropagator()

	return func(c *fiber.Ctx) error {
		// Extract trace context from incoming headers
		ctx := propagator.Extract(c.Context(), propagation.HeaderCarrier(c.GetReqHeaders()))

		ctx, span := tracer.Start(ctx, fmt.Sprintf("%s %s", c.Method(), c.Path()),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.url", c.OriginalURL()),
				attribute.String("http.host", c.Hostname()),
				attribute.String("http.user_agent", c.Get("User-Agent")),
				attribute.String("http.client_ip", c.IP()),
			),
		)
		defer span.End()

		if userID := c.Get(UserIDHeader); userID != "" {
			span.SetAttributes(attribute.String("enduser.id", userID))
		}

		// Store span in context for downstream use
		c.SetUserContext(ctx)

		// Add trace ID to response headers for debugging
		if span.SpanContext().HasTraceID() {
			c.Set("X-Trace-ID", span.SpanContext().TraceID().String())
		}

		err := c.Next()

		route := c.Route().Path
		span.SetName(fmt.Sprintf("%s %s", c.Method(), route))

		statusCode := c.Response().StatusCode()
		if err != nil {
			// The error handler has not run yet, so derive the status here
			statusCode = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				statusCode = fe.Code
			}
			span.RecordError(err)
		}
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", statusCode),
			attribute.Int("http.response_content_length", len(c.Response().Body())),
		)

		if statusCode >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", statusCode))
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}

// SpanFromContext gets the current span from Fiber context
func SpanFromContext(c *fiber.Ctx) trace.Span {
	return trace.SpanFromContext(c.UserContext())
}

// AddSpanEvent adds an event to the current span
func AddSpanEvent(c *fiber.Ctx, name string, attrs ...attribute.KeyValue) {
	SpanFromContext(c).AddEvent(name, trace.WithAttributes(attrs...))
}
