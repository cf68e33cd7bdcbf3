package middleware

import "github.com/gofiber/fiber/v2"

// Noop passes the request straight through. It is the smallest possible
// middleware, kept as a baseline for chain-ordering tests.
func Noop() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Next()
	}
}
