package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextAndTracingMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(7))
		return c.Next()
	})
	app.Use(ContextMiddleware())
	app.Use(TracingMiddleware())

	var gotRequestID, gotTraceID string
	var gotUserID uint
	app.Get("/", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		gotRequestID, _ = ctx.Value(RequestIDKey).(string)
		gotUserID, _ = ctx.Value(UserIDKey).(uint)
		gotTraceID, _ = ctx.Value(TraceIDKey).(string)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, uint(7), gotUserID)
	assert.Equal(t, resp.Header.Get("X-Trace-ID"), gotTraceID)
}

func TestMetricsCollectorIsShared(t *testing.T) {
	assert.Same(t, InitMetrics("taskbuddy-test"), InitMetrics("other"))
}
