package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/redis/go-redis/v9/internal/pool.(*ConnPool).reaper"),
	)
}

func newIdempotentApp(t *testing.T) (*fiber.App, *miniredis.Miniredis, *int32) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var calls int32
	app := fiber.New()
	app.Use(UserScope())
	app.Use(IdempotencyMiddleware(client, time.Minute))
	app.Post("/sets", func(c *fiber.Ctx) error {
		n := atomic.AddInt32(&calls, 1)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "call": n})
	})
	app.Post("/fail", func(c *fiber.Ctx) error {
		atomic.AddInt32(&calls, 1)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false})
	})
	return app, mr, &calls
}

func post(t *testing.T, app *fiber.App, path, userID, correlationID string) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}
	if correlationID != "" {
		req.Header.Set(CorrelationIDHeader, correlationID)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body), resp.Header.Get(ReplayHeader)
}

func TestUserScope(t *testing.T) {
	app := fiber.New()
	app.Use(UserScope())
	app.Get("/me", func(c *fiber.Ctx) error { return c.SendString(GetUserID(c)) })

	req := httptest.NewRequest("GET", "/me", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set(UserIDHeader, " u1 ")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "u1", string(body))
}

func TestIdempotency_ReplaysSuccessfulResponse(t *testing.T) {
	app, mr, calls := newIdempotentApp(t)

	status, first, replay := post(t, app, "/sets", "u1", "corr-1")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Empty(t, replay)

	require.Eventually(t, func() bool { return mr.Exists("idempotency:u1:corr-1") },
		time.Second, 10*time.Millisecond)

	status, second, replay := post(t, app, "/sets", "u1", "corr-1")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "true", replay)
	assert.JSONEq(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestIdempotency_ScopedPerUser(t *testing.T) {
	app, mr, calls := newIdempotentApp(t)

	post(t, app, "/sets", "u1", "corr-1")
	require.Eventually(t, func() bool { return mr.Exists("idempotency:u1:corr-1") },
		time.Second, 10*time.Millisecond)

	_, body, replay := post(t, app, "/sets", "u2", "corr-1")
	assert.Empty(t, replay)
	assert.Contains(t, body, `"call":2`)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestIdempotency_Bypass(t *testing.T) {
	app, mr, calls := newIdempotentApp(t)

	post(t, app, "/sets", "u1", "")
	post(t, app, "/sets", "u1", "")
	assert.Equal(t, int32(2), atomic.LoadInt32(calls), "no correlation id means no dedupe")

	post(t, app, "/fail", "u1", "corr-2")
	time.Sleep(50 * time.Millisecond)
	assert.False(t, mr.Exists("idempotency:u1:corr-2"), "failures are not cached")
	post(t, app, "/fail", "u1", "corr-2")
	assert.Equal(t, int32(4), atomic.LoadInt32(calls))
}
