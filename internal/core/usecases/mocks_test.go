package usecases_test

import (
	"context"
	"sync"
	"time"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
	"github.com/samirrijal/vertiwatch/internal/core/ports"
)

// --- Mock FleetAPI ---

type mockFleetAPI struct {
	teamsFn      func(ctx context.Context) ([]domain.Team, error)
	portsFn      func(ctx context.Context) ([]domain.Vertiport, error)
	unassignedFn func(ctx context.Context) ([]domain.RideRequest, error)
	assignedFn   func(ctx context.Context) ([]domain.RideRequest, error)
	dronesFn     func(ctx context.Context) ([]domain.DroneState, error)
	countsFn     func(ctx context.Context) ([]domain.RequestCount, error)
}

func (m *mockFleetAPI) Teams(ctx context.Context) ([]domain.Team, error) {
	if m.teamsFn != nil {
		return m.teamsFn(ctx)
	}
	return nil, nil
}

func (m *mockFleetAPI) Vertiports(ctx context.Context) ([]domain.Vertiport, error) {
	if m.portsFn != nil {
		return m.portsFn(ctx)
	}
	return nil, nil
}

func (m *mockFleetAPI) UnassignedRequests(ctx context.Context) ([]domain.RideRequest, error) {
	if m.unassignedFn != nil {
		return m.unassignedFn(ctx)
	}
	return nil, nil
}

func (m *mockFleetAPI) AssignedRequests(ctx context.Context) ([]domain.RideRequest, error) {
	if m.assignedFn != nil {
		return m.assignedFn(ctx)
	}
	return nil, nil
}

func (m *mockFleetAPI) DroneStates(ctx context.Context) ([]domain.DroneState, error) {
	if m.dronesFn != nil {
		return m.dronesFn(ctx)
	}
	return nil, nil
}

func (m *mockFleetAPI) RequestCounts(ctx context.Context) ([]domain.RequestCount, error) {
	if m.countsFn != nil {
		return m.countsFn(ctx)
	}
	return nil, nil
}

// fleetFixture returns two teams, two ports, one request of each kind, one
// drone per team and a count of 2 waiting at port 1.
func fleetFixture() *mockFleetAPI {
	return &mockFleetAPI{
		teamsFn: func(ctx context.Context) ([]domain.Team, error) {
			return []domain.Team{{ID: "1", Name: "alpha"}, {ID: "2", Name: "beta"}}, nil
		},
		portsFn: func(ctx context.Context) ([]domain.Vertiport, error) {
			return []domain.Vertiport{
				{PortID: "1", PortName: "Gates", Latitude: 37.4300, Longitude: -122.1730},
				{PortID: "2", PortName: "Oval", Latitude: 37.4290, Longitude: -122.1690},
			}, nil
		},
		unassignedFn: func(ctx context.Context) ([]domain.RideRequest, error) {
			return []domain.RideRequest{{RequestID: "10", FromPort: "1", ToPort: "2"}}, nil
		},
		assignedFn: func(ctx context.Context) ([]domain.RideRequest, error) {
			return []domain.RideRequest{
				{RequestID: "11", FromPort: "2", ToPort: "1", TeamID: "2", State: domain.RequestStateAssigned},
			}, nil
		},
		dronesFn: func(ctx context.Context) ([]domain.DroneState, error) {
			return []domain.DroneState{
				{DroneID: "d1", TeamID: "1", IsPhysical: true, Latitude: 37.4295, Longitude: -122.1710},
				{DroneID: "d2", TeamID: "2", Latitude: 37.4297, Longitude: -122.1700},
			}, nil
		},
		countsFn: func(ctx context.Context) ([]domain.RequestCount, error) {
			return []domain.RequestCount{{FromPort: "1", ToPort: "2", FromPortName: "Gates", ToPortName: "Oval", Count: 2}}, nil
		},
	}
}

// --- Mock SnapshotPublisher ---

type recordingPublisher struct {
	mu        sync.Mutex
	snapshots []*domain.Snapshot
	viewports []domain.Viewport
	rotations []bool
	err       error
}

func (p *recordingPublisher) PublishSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, snap)
	return p.err
}

func (p *recordingPublisher) PublishViewport(ctx context.Context, vp domain.Viewport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.viewports = append(p.viewports, vp)
	return p.err
}

func (p *recordingPublisher) PublishRotation(ctx context.Context, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rotations = append(p.rotations, enabled)
	return p.err
}

// --- Mock CacheService ---

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls[key] = ttlSeconds
	return nil
}

// --- Mock repositories ---

type mockTrackRepo struct {
	insertBatchFn  func(ctx context.Context, points []domain.TrackPoint) error
	latestFn       func(ctx context.Context, droneID string, limit int) ([]domain.TrackPoint, error)
	deleteBeforeFn func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockTrackRepo) InsertBatch(ctx context.Context, points []domain.TrackPoint) error {
	if m.insertBatchFn != nil {
		return m.insertBatchFn(ctx, points)
	}
	return nil
}

func (m *mockTrackRepo) Latest(ctx context.Context, droneID string, limit int) ([]domain.TrackPoint, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, droneID, limit)
	}
	return nil, nil
}

func (m *mockTrackRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteBeforeFn != nil {
		return m.deleteBeforeFn(ctx, cutoff)
	}
	return 0, nil
}

type mockSnapshotRepo struct {
	insertFn       func(ctx context.Context, sum domain.SnapshotSummary) error
	listFn         func(ctx context.Context, offset, limit int) ([]domain.SnapshotSummary, int, error)
	deleteBeforeFn func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockSnapshotRepo) Insert(ctx context.Context, sum domain.SnapshotSummary) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, sum)
	}
	return nil
}

func (m *mockSnapshotRepo) List(ctx context.Context, offset, limit int) ([]domain.SnapshotSummary, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockSnapshotRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteBeforeFn != nil {
		return m.deleteBeforeFn(ctx, cutoff)
	}
	return 0, nil
}
