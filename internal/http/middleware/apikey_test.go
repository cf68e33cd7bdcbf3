package middleware

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestAPIKey(t *testing.T) {
	newApp := func(key string) *fiber.App {
		app := fiber.New()
		app.Post("/protected", APIKey(key), func(c *fiber.Ctx) error {
			return c.SendString("ok")
		})
		return app
	}

	t.Run("header", func(t *testing.T) {
		app := newApp("secret")
		req := httptest.NewRequest("POST", "/protected", nil)
		req.Header.Set(APIKeyHeader, "secret")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("form field", func(t *testing.T) {
		app := newApp("secret")
		form := url.Values{"apiKey": {"secret"}}
		req := httptest.NewRequest("POST", "/protected", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("query parameter", func(t *testing.T) {
		app := newApp("secret")
		req := httptest.NewRequest("POST", "/protected?apiKey=secret", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("wrong key", func(t *testing.T) {
		app := newApp("secret")
		req := httptest.NewRequest("POST", "/protected", nil)
		req.Header.Set(APIKeyHeader, "wrong")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing key", func(t *testing.T) {
		app := newApp("secret")
		req := httptest.NewRequest("POST", "/protected", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("empty configured key rejects everything", func(t *testing.T) {
		app := newApp("")
		req := httptest.NewRequest("POST", "/protected", nil)
		req.Header.Set(APIKeyHeader, "")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
