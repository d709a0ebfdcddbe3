package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
)

// FleetAPI reads the fleet backend. Every call is an independent GET.
type FleetAPI interface {
	Teams(ctx context.Context) ([]domain.Team, error)
	Vertiports(ctx context.Context) ([]domain.Vertiport, error)
	UnassignedRequests(ctx context.Context) ([]domain.RideRequest, error)
	AssignedRequests(ctx context.Context) ([]domain.RideRequest, error)
	DroneStates(ctx context.Context) ([]domain.DroneState, error)
	RequestCounts(ctx context.Context) ([]domain.RequestCount, error)
}

// SnapshotPublisher pushes view state to a presentation layer.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, snap *domain.Snapshot) error
	PublishViewport(ctx context.Context, vp domain.Viewport) error
	PublishRotation(ctx context.Context, enabled bool) error
}

// SnapshotSubscriber delivers snapshots published by another process.
type SnapshotSubscriber interface {
	SubscribeSnapshots(ctx context.Context, handler func(ctx context.Context, snap *domain.Snapshot) error) error
}

// ErrCacheMiss is returned by CacheService.Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
}
