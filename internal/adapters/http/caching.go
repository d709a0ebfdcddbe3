package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		// Live view state changes every frame.
		case path == "/v1/snapshot", path == "/v1/state", path == "/v1/requests",
			path == "/v1/drones", path == "/v1/vertiports", path == "/v1/metrics-view",
			path == "/v1/viewport":
			ttl = "no-store"

		// The palette is fixed at startup.
		case path == "/v1/legend":
			ttl = "public, max-age=3600"

		case strings.HasSuffix(path, "/trail"), path == "/v1/history":
			ttl = "private, max-age=5"

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}
