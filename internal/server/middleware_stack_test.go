package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chirp/internal/config"
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webOrigin = "https://app.chirp.test"

func newStackApp(t *testing.T, origins string) *fiber.App {
	t.Helper()
	srv := &Server{config: &config.Config{AllowedOrigins: origins}}
	app := fiber.New()
	srv.SetupMiddleware(app)
	app.Get("/api/tweets", func(c *fiber.Ctx) error {
		return c.JSON([]string{})
	})
	app.Post("/api/tweets", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("handler exploded")
	})
	return app
}

func fromOrigin(method, target, origin string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestMiddlewareStack_Headers(t *testing.T) {
	app := newStackApp(t, webOrigin)

	resp, err := app.Test(fromOrigin(http.MethodGet, "/api/tweets", webOrigin), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, webOrigin, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", resp.Header.Get(fiber.HeaderAccessControlAllowCredentials))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
	assert.Equal(t, "nosniff", resp.Header.Get(fiber.HeaderXContentTypeOptions))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXFrameOptions))
}

func TestMiddlewareStack_UnknownOriginGetsNoCORS(t *testing.T) {
	app := newStackApp(t, webOrigin)

	resp, err := app.Test(fromOrigin(http.MethodGet, "/api/tweets", "https://evil.example"), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}

func TestMiddlewareStack_RecoversFromPanic(t *testing.T) {
	app := newStackApp(t, webOrigin)

	resp, err := app.Test(fromOrigin(http.MethodGet, "/boom", ""), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestMiddlewareStack_GlobalLimiter(t *testing.T) {
	app := newStackApp(t, webOrigin)

	for i := 0; i < 100; i++ {
		resp, err := app.Test(fromOrigin(http.MethodPost, "/api/tweets", webOrigin), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode, "request %d", i+1)
		_ = resp.Body.Close()
	}

	t.Run("Limited Response Keeps CORS", func(t *testing.T) {
		resp, err := app.Test(fromOrigin(http.MethodPost, "/api/tweets", webOrigin), -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, webOrigin, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
		assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))

		var body models.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, models.CodeRateLimited, body.Code)
	})

	t.Run("Preflight Is Not Limited", func(t *testing.T) {
		req := fromOrigin(http.MethodOptions, "/api/tweets", webOrigin)
		req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodPost)
		req.Header.Set(fiber.HeaderAccessControlRequestHeaders, "authorization,content-type")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		assert.Equal(t, webOrigin, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
		assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlAllowMethods), http.MethodPost)
	})
}
