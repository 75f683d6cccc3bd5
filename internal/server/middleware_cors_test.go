package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"agora/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontendOrigin = "http://localhost:5173"

// middlewareApp runs only the global middleware chain in front of a trivial /ping route.
func middlewareApp(origins string) *fiber.App {
	srv := &Server{config: &config.Config{AllowedOrigins: origins}}
	app := fiber.New()
	srv.SetupMiddleware(app)
	handler := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Get("/ping", handler)
	app.Post("/ping", handler)
	return app
}

func originRequest(t *testing.T, app *fiber.App, method, origin string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, "/ping", nil)
	req.Header.Set("Origin", origin)
	if method == http.MethodOptions {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// exhaustLimiter spends the global per-IP budget.
func exhaustLimiter(t *testing.T, app *fiber.App, method string) {
	t.Helper()
	for i := 0; i < 100; i++ {
		resp := originRequest(t, app, method, frontendOrigin)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, "request %d", i)
	}
}

func TestCORS_AllowedOrigins(t *testing.T) {
	tests := []struct {
		name    string
		origins string
		origin  string
		allowed bool
	}{
		{"configured origin", frontendOrigin, frontendOrigin, true},
		{"foreign origin", frontendOrigin, "https://evil.example", false},
		{"default dev origin", "", "http://localhost:3000", true},
		{"default rejects others", "", "https://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := originRequest(t, middlewareApp(tt.origins), http.MethodGet, tt.origin)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			if tt.allowed {
				assert.Equal(t, tt.origin, resp.Header.Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestCORS_ThrottledResponseKeepsHeaders(t *testing.T) {
	app := middlewareApp(frontendOrigin)
	exhaustLimiter(t, app, http.MethodGet)

	resp := originRequest(t, app, http.MethodGet, frontendOrigin)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, frontendOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightSkipsLimiter(t *testing.T) {
	app := middlewareApp(frontendOrigin)
	exhaustLimiter(t, app, http.MethodPost)
	require.Equal(t, fiber.StatusTooManyRequests, originRequest(t, app, http.MethodPost, frontendOrigin).StatusCode)

	resp := originRequest(t, app, http.MethodOptions, frontendOrigin)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, frontendOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}
