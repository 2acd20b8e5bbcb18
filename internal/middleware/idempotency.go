package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	CorrelationIDHeader = "X-Correlation-ID"
	ReplayHeader        = "X-Idempotent-Replay"
)

// IdempotencyMiddleware provides idempotency for POST/PATCH/PUT requests using X-Correlation-ID.
// If the same user sends the same correlation ID within the TTL, the cached response is returned.
func IdempotencyMiddleware(redisClient *redis.Client, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Only apply to mutating methods
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPatch && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		correlationID := c.Get(CorrelationIDHeader)
		if correlationID == "" {
			// No correlation ID = no idempotency check
			return c.Next()
		}

		key := idempotencyKey(GetUserID(c), correlationID)
		ctx := c.UserContext()

		cached, err := redisClient.Get(ctx, key).Bytes()
		if err == nil && len(cached) > 0 {
			c.Set(ReplayHeader, "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(fiber.StatusOK).Send(cached)
		}
		if err != nil && err != redis.Nil {
			log.WithError(err).WithField("key", key).Warn("idempotency lookup failed")
		}

		if err := c.Next(); err != nil {
			return err
		}

		// Cache successful responses (2xx status codes)
		statusCode := c.Response().StatusCode()
		if statusCode >= 200 && statusCode < 300 {
			// fasthttp reuses the response buffer once the handler returns
			body := append([]byte(nil), c.Response().Body()...)
			if len(body) > 0 {
				go func() {
					bgCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					if err := redisClient.Set(bgCtx, key, body, ttl).Err(); err != nil {
						log.WithError(err).WithField("key", key).Warn("failed to store idempotent response")
					}
				}()
			}
		}

		return nil
	}
}

func idempotencyKey(userID, correlationID string) string {
	if userID == "" {
		return fmt.Sprintf("idempotency:%s", correlationID)
	}
	return fmt.Sprintf("idempotency:%s:%s", userID, correlationID)
}
