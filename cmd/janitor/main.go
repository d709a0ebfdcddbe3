package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/vertiwatch/internal/adapters/postgres"
	"github.com/samirrijal/vertiwatch/internal/core/usecases"
	"github.com/samirrijal/vertiwatch/internal/pkg/config"
	"github.com/samirrijal/vertiwatch/internal/pkg/logging"
	"github.com/samirrijal/vertiwatch/internal/workflows"
)

func main() {
	cfg, err := config.Load("vertiwatch-janitor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.RetentionWorkflow)
	w.RegisterActivity(&workflows.RetentionActivities{
		Tracks: usecases.NewTrackService(postgres.NewTrackRepo(db), postgres.NewSnapshotRepo(db), 0),
	})

	// Schedule the cron. An already running cron with the same id is kept.
	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	run, err := c.ExecuteWorkflow(startCtx, client.StartWorkflowOptions{
		ID:           workflows.RetentionWorkflowID,
		TaskQueue:    cfg.Temporal.TaskQueue,
		CronSchedule: cfg.Retention.Cron,
	}, workflows.RetentionWorkflow, workflows.RetentionInput{MaxAge: cfg.Retention.MaxAge})
	cancel()
	if err != nil {
		slog.Warn("retention cron not started", "error", err)
	} else {
		slog.Info("retention cron scheduled", "workflow_id", run.GetID(), "cron", cfg.Retention.Cron, "max_age", cfg.Retention.MaxAge)
	}

	slog.Info("janitor worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
