package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_AddsContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("production", &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, uint(9))
	logger.With("component", "test").InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"user_id":9`)
	assert.Contains(t, out, `"component":"test"`)
}

func TestStatusOf(t *testing.T) {
	app := fiber.New()
	var got []int
	app.Get("/", func(c *fiber.Ctx) error {
		got = append(got,
			statusOf(c, models.NewNotFoundError("Post not found")),
			statusOf(c, fiber.NewError(fiber.StatusTooManyRequests, "slow down")),
			statusOf(c, errors.New("boom")),
		)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, []int{404, 429, 500}, got)
}

func TestStructuredLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger
	Logger = NewLogger("production", &buf)
	defer func() { Logger = prev }()

	app := fiber.New(fiber.Config{ErrorHandler: testErrorHandler})
	app.Use(requestid.New(), ContextMiddleware(), StructuredLogger())
	app.Get("/missing", func(c *fiber.Ctx) error {
		return models.NewNotFoundError("Post not found")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()

	out := buf.String()
	assert.Contains(t, out, `"msg":"request rejected"`)
	assert.Contains(t, out, `"status":404`)
	assert.Contains(t, out, `"request_id"`)
}
