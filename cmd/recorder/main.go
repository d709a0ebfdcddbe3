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
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	natsadapter "github.com/samirrijal/vertiwatch/internal/adapters/nats"
	"github.com/samirrijal/vertiwatch/internal/adapters/postgres"
	"github.com/samirrijal/vertiwatch/internal/core/domain"
	"github.com/samirrijal/vertiwatch/internal/core/usecases"
	"github.com/samirrijal/vertiwatch/internal/pkg/config"
	"github.com/samirrijal/vertiwatch/internal/pkg/logging"
	"github.com/samirrijal/vertiwatch/internal/pkg/metrics"
	"github.com/samirrijal/vertiwatch/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("vertiwatch-recorder")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolMetrics(ctx, 15*time.Second)

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	tracks := usecases.NewTrackService(postgres.NewTrackRepo(db), postgres.NewSnapshotRepo(db), cfg.Recorder.SampleInterval)
	tracer := otel.Tracer(telemetry.TracerRecorder)

	err = sub.SubscribeSnapshots(ctx, func(ctx context.Context, snap *domain.Snapshot) error {
		ctx, span := tracer.Start(ctx, telemetry.SpanRecordSample)
		defer span.End()
		span.SetAttributes(
			attribute.Int64(telemetry.AttrSnapshotSeq, int64(snap.Seq)),
			attribute.Int(telemetry.AttrSnapshotDrones, len(snap.Drones)),
		)

		sampled, err := tracks.Record(ctx, snap)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		if sampled {
			slog.Debug("snapshot recorded", "seq", snap.Seq, "drones", len(snap.Drones))
		}
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	// Metrics endpoint for the pool gauges and track counters
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/metrics", metrics.Handler())
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		if err := app.Listen(addr); err != nil {
			slog.Error("metrics listener", "error", err)
		}
	}()

	slog.Info("recorder started", "sample_interval", cfg.Recorder.SampleInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("recorder shutting down")
	_ = app.Shutdown()
}
