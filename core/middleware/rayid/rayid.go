package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header carries the ray id back to the client and accepts one from proxies.
const Header = "X-Ray-Id"

// New creates the ray id middleware. Every request gets a unique id stored
// in locals under "ray_id" and echoed in the response header. An incoming
// id from an upstream proxy is kept.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals("ray_id", id)
		c.Set(Header, id)
		return c.Next()
	}
}
