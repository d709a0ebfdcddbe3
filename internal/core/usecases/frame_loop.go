package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
	"github.com/samirrijal/vertiwatch/internal/core/ports"
	"github.com/samirrijal/vertiwatch/internal/pkg/metrics"
	"github.com/samirrijal/vertiwatch/internal/pkg/telemetry"
)

// ErrLoopRunning is returned by Run when the loop is already running.
var ErrLoopRunning = errors.New("frame loop already running")

// Frame loop defaults.
const (
	DefaultFrameRate       = 30
	DefaultRefreshRate     = 60
	DefaultRotateIncrement = 0.1
)

// FrameLoopConfig configures the poll cadence and the initial camera.
type FrameLoopConfig struct {
	// FrameInterval is the minimum time between two poll batches.
	FrameInterval time.Duration
	// RefreshInterval is how often the loop wakes up to check FrameInterval.
	RefreshInterval time.Duration
	// RotateIncrement is added to the bearing on every published snapshot
	// while rotation is enabled.
	RotateIncrement float64
	Rotate          bool
	Viewport        domain.Viewport
	// LegacySchema skips the request-count endpoint, for backends that
	// predate it.
	LegacySchema bool
	// Now overrides the wall clock. Defaults to time.Now.
	Now func() time.Time
}

// FrameLoop is the poll-merge-render scheduler. On every refresh tick it
// checks the time since the last batch; once a full frame interval has
// elapsed it fetches requests, drones and counts concurrently, merges them
// with the reference data and replaces the published snapshot. A failed
// batch is logged and dropped, leaving the previous snapshot in place.
type FrameLoop struct {
	api        ports.FleetAPI
	ref        *ReferenceService
	publishers []ports.SnapshotPublisher
	cfg        FrameLoopConfig

	// then and seq belong to the goroutine calling Step.
	then time.Time
	seq  uint64

	mu       sync.Mutex
	viewport domain.Viewport
	rotate   bool

	current atomic.Pointer[domain.Snapshot]

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewFrameLoop creates a loop with an empty initial snapshot.
func NewFrameLoop(api ports.FleetAPI, ref *ReferenceService, cfg FrameLoopConfig, publishers ...ports.SnapshotPublisher) *FrameLoop {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = time.Second / DefaultFrameRate
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = time.Second / DefaultRefreshRate
	}
	if cfg.RotateIncrement == 0 {
		cfg.RotateIncrement = DefaultRotateIncrement
	}
	if cfg.Viewport == (domain.Viewport{}) {
		cfg.Viewport = domain.DefaultViewport()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	l := &FrameLoop{
		api:        api,
		ref:        ref,
		publishers: publishers,
		cfg:        cfg,
		then:       cfg.Now(),
		viewport:   cfg.Viewport,
		rotate:     cfg.Rotate,
	}
	l.current.Store(&domain.Snapshot{
		Requests:   []domain.RideRequest{},
		Drones:     []domain.DroneState{},
		Counts:     []domain.RequestCount{},
		Vertiports: []domain.Vertiport{},
		Viewport:   cfg.Viewport,
		IconScale:  cfg.Viewport.IconScale(),
	})
	return l
}

// Current returns the latest published snapshot. Callers must not modify it.
func (l *FrameLoop) Current() *domain.Snapshot {
	return l.current.Load()
}

// Run drives Step from a refresh ticker until ctx is cancelled or Stop is
// called.
func (l *FrameLoop) Run(ctx context.Context) error {
	l.runMu.Lock()
	if l.cancel != nil {
		l.runMu.Unlock()
		return ErrLoopRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel, l.done = cancel, done
	l.runMu.Unlock()

	defer func() {
		l.runMu.Lock()
		l.cancel, l.done = nil, nil
		l.runMu.Unlock()
		cancel()
		close(done)
	}()

	slog.Info("frame loop started",
		"frame_interval", l.cfg.FrameInterval, "refresh_interval", l.cfg.RefreshInterval,
		"legacy_schema", l.cfg.LegacySchema)

	ticker := time.NewTicker(l.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("frame loop stopped", "published", l.seq)
			return nil
		case <-ticker.C:
			l.Step(ctx, l.cfg.Now())
		}
	}
}

// Stop cancels a running loop and waits for it to exit.
func (l *FrameLoop) Stop() {
	l.runMu.Lock()
	cancel, done := l.cancel, l.done
	l.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Step is one refresh tick. It returns true when a poll batch was issued.
// Step must not be called concurrently.
func (l *FrameLoop) Step(ctx context.Context, now time.Time) bool {
	delta := now.Sub(l.then)
	if delta < l.cfg.FrameInterval {
		metrics.FramesThrottled.Inc()
		return false
	}
	// Keep the phase of the frame grid instead of resetting to now, so the
	// effective rate does not drift below the target.
	l.then = now.Add(-(delta % l.cfg.FrameInterval))
	l.poll(ctx)
	return true
}

func (l *FrameLoop) poll(ctx context.Context) {
	ctx, span := otel.Tracer(telemetry.TracerFrameLoop).Start(ctx, telemetry.SpanPollBatch)
	defer span.End()

	start := time.Now()
	batch, err := l.fetch(ctx)
	metrics.PollDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PollBatches.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Warn("poll batch failed, keeping previous snapshot", "error", err)
		return
	}
	metrics.PollBatches.WithLabelValues("ok").Inc()

	snap := Merge(batch, l.ref.Current(), l.advanceViewport())
	l.seq++
	snap.Seq = l.seq
	snap.GeneratedAt = l.cfg.Now()
	l.current.Store(snap)
	metrics.SnapshotsPublished.Inc()

	span.SetAttributes(
		attribute.Int64(telemetry.AttrSnapshotSeq, int64(snap.Seq)),
		attribute.Int(telemetry.AttrSnapshotDrones, len(snap.Drones)),
		attribute.Int(telemetry.AttrSnapshotRequests, len(snap.Requests)),
	)

	for _, p := range l.publishers {
		if err := p.PublishSnapshot(ctx, snap); err != nil {
			metrics.PublishErrors.Inc()
			slog.Warn("publish snapshot", "seq", snap.Seq, "error", err)
		}
	}
}

// fetch issues all reads of one batch concurrently and fails if any fails.
func (l *FrameLoop) fetch(ctx context.Context) (domain.Batch, error) {
	var b domain.Batch
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		b.Unassigned, err = l.api.UnassignedRequests(gctx)
		return wrapFetch("unassigned requests", err)
	})
	g.Go(func() (err error) {
		b.Assigned, err = l.api.AssignedRequests(gctx)
		return wrapFetch("assigned requests", err)
	})
	g.Go(func() (err error) {
		b.Drones, err = l.api.DroneStates(gctx)
		return wrapFetch("drone states", err)
	})
	if !l.cfg.LegacySchema {
		g.Go(func() (err error) {
			b.Counts, err = l.api.RequestCounts(gctx)
			return wrapFetch("request counts", err)
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Batch{}, err
	}
	return b, nil
}

func wrapFetch(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("fetch %s: %w", what, err)
}

// advanceViewport applies one rotation step if enabled and returns the
// viewport to publish with the next snapshot.
func (l *FrameLoop) advanceViewport() domain.Viewport {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rotate {
		l.viewport = l.viewport.Rotate(l.cfg.RotateIncrement)
	}
	return l.viewport
}

// Viewport returns the live camera, which may be ahead of the last snapshot.
func (l *FrameLoop) Viewport() domain.Viewport {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewport
}

// SetViewport applies a partial camera change and announces it right away.
func (l *FrameLoop) SetViewport(ctx context.Context, patch domain.ViewportPatch) (domain.Viewport, error) {
	l.mu.Lock()
	vp, err := l.viewport.Apply(patch)
	if err != nil {
		l.mu.Unlock()
		return l.viewport, err
	}
	l.viewport = vp
	l.mu.Unlock()

	for _, p := range l.publishers {
		if err := p.PublishViewport(ctx, vp); err != nil {
			metrics.PublishErrors.Inc()
			slog.Warn("publish viewport", "error", err)
		}
	}
	return vp, nil
}

// Rotating reports whether the camera is auto-rotating.
func (l *FrameLoop) Rotating() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rotate
}

// SetRotate enables or disables auto-rotation and announces the new state.
func (l *FrameLoop) SetRotate(ctx context.Context, enabled bool) bool {
	l.mu.Lock()
	l.rotate = enabled
	l.mu.Unlock()
	l.publishRotation(ctx, enabled)
	return enabled
}

// ToggleRotate flips auto-rotation and returns the new state.
func (l *FrameLoop) ToggleRotate(ctx context.Context) bool {
	l.mu.Lock()
	l.rotate = !l.rotate
	enabled := l.rotate
	l.mu.Unlock()
	l.publishRotation(ctx, enabled)
	return enabled
}

func (l *FrameLoop) publishRotation(ctx context.Context, enabled bool) {
	for _, p := range l.publishers {
		if err := p.PublishRotation(ctx, enabled); err != nil {
			metrics.PublishErrors.Inc()
			slog.Warn("publish rotation", "enabled", enabled, "error", err)
		}
	}
}

// Palette returns the team palette the loop colors snapshots with.
func (l *FrameLoop) Palette() *domain.Palette {
	return l.ref.Current().palette()
}
