package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader propagates the request ID between client and service.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is where downstream handlers find the request ID in
	// Fiber's context locals; the error envelope and the JSON logger both
	// read it from there.
	RequestIDLocalKey = "request_id"
)

// RequestID ensures every request carries an ID, so a rejected upload or a
// failed issuance can be matched to its log line. An incoming X-Request-ID is
// honored; otherwise a fresh UUID is generated. The ID is stored in context
// locals and mirrored on the response header.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
