package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		clients := 0
		if deps.Hub != nil {
			clients = deps.Hub.Clients()
		}
		return c.JSON(fiber.Map{
			"status":            "healthy",
			"uptime":            time.Since(startedAt).String(),
			"version":           "dev",
			"websocket_clients": clients,
		})
	}
}

// ReadyHandler reports ready once the frame loop has published a snapshot.
// Optional infrastructure is checked when configured but only the database
// and NATS fail the check.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true

		// Frame loop
		if snap := deps.Loop.Current(); snap.Seq > 0 {
			checks["frame_loop"] = "ok"
		} else {
			checks["frame_loop"] = "waiting for first snapshot"
			allOK = false
		}

		// Reference data
		if deps.Reference != nil {
			checks["reference"] = deps.Reference.Current().Source
		}

		// Database
		if deps.DB != nil {
			if err := deps.DB.Ping(ctx); err != nil {
				checks["database"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["database"] = "ok"
			}
		} else {
			checks["database"] = "not configured"
		}

		// NATS
		if deps.NATS != nil {
			if deps.NATS.IsConnected() {
				checks["nats"] = "ok"
			} else {
				checks["nats"] = "disconnected"
				allOK = false
			}
		} else {
			checks["nats"] = "not configured"
		}

		// Valkey cache
		if deps.Cache != nil {
			if err := deps.Cache.Ping(ctx); err != nil {
				checks["cache"] = "error: " + err.Error()
			} else {
				checks["cache"] = "ok"
			}
		} else {
			checks["cache"] = "not configured"
		}

		status := "ready"
		code := fiber.StatusOK
		if !allOK {
			status = "not ready"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
