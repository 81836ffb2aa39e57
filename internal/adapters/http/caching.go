package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if len(c.Response().Header.Peek(fiber.HeaderCacheControl)) > 0 {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasPrefix(path, "/v1/analytics") || strings.HasPrefix(path, "/v1/monitoring"):
			ttl = "no-store" // live logs

		case strings.HasPrefix(path, "/v1/memories"):
			ttl = "no-cache"

		case strings.HasPrefix(path, "/v1/map"):
			ttl = "public, max-age=30"

		case strings.HasPrefix(path, "/v1/tours"):
			ttl = "public, max-age=300"

		case strings.HasPrefix(path, "/v1/interventions/"):
			ttl = "public, max-age=60"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
