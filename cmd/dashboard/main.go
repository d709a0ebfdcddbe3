package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/vertiwatch/internal/adapters/fleetapi"
	"github.com/samirrijal/vertiwatch/internal/adapters/http"
	natsadapter "github.com/samirrijal/vertiwatch/internal/adapters/nats"
	"github.com/samirrijal/vertiwatch/internal/adapters/postgres"
	"github.com/samirrijal/vertiwatch/internal/adapters/valkey"
	"github.com/samirrijal/vertiwatch/internal/core/domain"
	"github.com/samirrijal/vertiwatch/internal/core/ports"
	"github.com/samirrijal/vertiwatch/internal/core/usecases"
	"github.com/samirrijal/vertiwatch/internal/pkg/config"
	"github.com/samirrijal/vertiwatch/internal/pkg/logging"
	"github.com/samirrijal/vertiwatch/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("vertiwatch-dashboard")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	api := fleetapi.New(cfg.Backend.BaseURL, cfg.Backend.Timeout())

	// Cache
	var refCache ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr, "vertiwatch")
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		refCache = cache
	}

	// Reference data
	ref := usecases.NewReferenceService(api, refCache, nil)
	loadCtx, loadCancel := context.WithTimeout(ctx, 10*time.Second)
	if _, err := ref.Load(loadCtx); err != nil {
		slog.Warn("starting without reference data", "error", err)
	}
	loadCancel()

	// Publishers
	hub := http.NewHub()
	publishers := []ports.SnapshotPublisher{hub}

	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
		publishers = append(publishers, nc)
	}

	// Database, only needed for trails and history
	var tracks *usecases.TrackService
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Warn("database unavailable, trail and history disabled", "error", err)
	} else {
		defer db.Close()
		go db.ReportPoolMetrics(ctx, 15*time.Second)
		tracks = usecases.NewTrackService(postgres.NewTrackRepo(db), postgres.NewSnapshotRepo(db), cfg.Recorder.SampleInterval)
	}

	// Frame loop
	vc := cfg.Dashboard.Viewport
	loop := usecases.NewFrameLoop(api, ref, usecases.FrameLoopConfig{
		FrameInterval:   time.Second / time.Duration(cfg.Dashboard.FrameRate),
		RefreshInterval: time.Second / time.Duration(cfg.Dashboard.RefreshRate),
		RotateIncrement: cfg.Dashboard.RotateIncrement,
		Rotate:          cfg.Dashboard.Rotate,
		LegacySchema:    cfg.Backend.Legacy(),
		Viewport: domain.Viewport{
			Longitude: vc.Longitude,
			Latitude:  vc.Latitude,
			Zoom:      vc.Zoom,
			MinZoom:   vc.MinZoom,
			MaxZoom:   vc.MaxZoom,
			Pitch:     vc.Pitch,
			Bearing:   vc.Bearing,
			Width:     vc.Width,
			Height:    vc.Height,
			MapStyle:  vc.MapStyle,
		},
	}, publishers...)

	go func() {
		if err := loop.Run(ctx); err != nil {
			slog.Error("frame loop", "error", err)
		}
	}()

	deps := &http.Dependencies{
		Loop:      loop,
		Reference: ref,
		Tracks:    tracks,
		Hub:       hub,
		DB:        db,
		Cache:     cache,
		StaticDir: cfg.Server.StaticDir,
	}
	if nc != nil {
		deps.NATS = nc.Conn()
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "VertiWatch Dashboard",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("dashboard server starting", "addr", addr, "backend", cfg.Backend.BaseURL)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())
	loop.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
