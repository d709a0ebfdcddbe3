package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/vertiwatch/internal/pkg/metrics"
)

// stateSunset is when the pre-v1 /v1/state alias goes away.
var stateSunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Snapshots are large and repetitive JSON
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c *fiber.Ctx) bool {
			return websocket.IsWebSocketUpgrade(c)
		},
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Dashboards without websocket support poll the snapshot at frame rate,
	// so the per-IP budget is sized for that.
	app.Use(limiter.New(limiter.Config{
		Max:        3600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/metrics" || c.Path() == "/v1/health"
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware("/metrics", "/ws"))
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{Path: "/v1/state", SunsetDate: stateSunset, Alternative: "/v1/snapshot"},
	}))

	// Health & readiness, no timeout
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// Live view state is served from memory.
	v1 := app.Group("/v1")
	v1.Get("/snapshot", SnapshotHandler(deps))
	v1.Get("/state", SnapshotHandler(deps))
	v1.Get("/requests", RequestsHandler(deps))
	v1.Get("/drones", DronesHandler(deps))
	v1.Get("/vertiports", VertiportsHandler(deps))
	v1.Get("/legend", LegendHandler(deps))
	v1.Get("/metrics-view", MetricsViewHandler(deps))

	// Controls
	v1.Get("/viewport", GetViewportHandler(deps))
	v1.Patch("/viewport", PatchViewportHandler(deps))
	v1.Put("/rotation", SetRotationHandler(deps))
	v1.Post("/rotation/toggle", ToggleRotationHandler(deps))

	// Recorded history hits Postgres, 10s per-request timeout
	v1.Get("/drones/:id/trail", timeout.NewWithContext(TrailHandler(deps), 10*time.Second))
	v1.Get("/history", timeout.NewWithContext(HistoryHandler(deps), 10*time.Second))

	// GraphQL
	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), 10*time.Second))

	// API documentation (Swagger UI)
	SetupDocs(app, deps.OpenAPIPath)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))

	// Browser bundle
	if deps.StaticDir != "" {
		app.Static("/", deps.StaticDir)
	}
}
