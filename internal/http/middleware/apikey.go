package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// APIKeyHeader is the header clients send the shared upload secret in.
const APIKeyHeader = "x-api-key"

// APIKey gates issuance endpoints behind a single shared secret. The key may
// arrive in the x-api-key header, an apiKey form field, or an apiKey query
// parameter; the header wins when several are present. An empty configured
// key rejects everything rather than opening the endpoint.
func APIKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Get(APIKeyHeader)
		if got == "" {
			got = c.FormValue("apiKey")
		}
		if got == "" {
			got = c.Query("apiKey")
		}
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid api key")
		}
		return c.Next()
	}
}
