package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
	"github.com/samirrijal/vertiwatch/internal/core/ports"
	"github.com/samirrijal/vertiwatch/internal/pkg/geospatial"
	"github.com/samirrijal/vertiwatch/internal/pkg/metrics"
)

// DefaultTrailLimit is the number of points returned when no limit is given.
const DefaultTrailLimit = 100

// TrackService records drone positions from published snapshots and serves
// the resulting trails.
type TrackService struct {
	tracks      ports.TrackRepository
	snapshots   ports.SnapshotRepository
	sampleEvery time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewTrackService creates a new TrackService. Snapshots closer together than
// sampleEvery are skipped when recording.
func NewTrackService(tracks ports.TrackRepository, snapshots ports.SnapshotRepository, sampleEvery time.Duration) *TrackService {
	return &TrackService{tracks: tracks, snapshots: snapshots, sampleEvery: sampleEvery}
}

// Record persists one track point per drone plus a summary of the snapshot.
// It reports whether the snapshot was sampled.
func (s *TrackService) Record(ctx context.Context, snap *domain.Snapshot) (bool, error) {
	s.mu.Lock()
	if !s.last.IsZero() && snap.GeneratedAt.Sub(s.last) < s.sampleEvery {
		s.mu.Unlock()
		return false, nil
	}
	prev := s.last
	s.last = snap.GeneratedAt
	s.mu.Unlock()

	points := make([]domain.TrackPoint, 0, len(snap.Drones))
	for _, d := range snap.Drones {
		points = append(points, domain.TrackPoint{
			Time:        snap.GeneratedAt,
			Seq:         snap.Seq,
			DroneID:     d.DroneID.String(),
			TeamID:      d.TeamID.String(),
			Location:    domain.GeoPoint{Lat: d.Latitude, Lon: d.Longitude},
			Altitude:    d.Altitude,
			Velocity:    d.Velocity,
			BatteryLeft: d.BatteryLeft,
			Passengers:  d.Passengers,
			IsPhysical:  d.IsPhysical,
		})
	}

	if err := s.tracks.InsertBatch(ctx, points); err != nil {
		s.rewind(snap.GeneratedAt, prev)
		return false, fmt.Errorf("insert track points: %w", err)
	}
	metrics.TrackPointsRecorded.Add(float64(len(points)))

	if err := s.snapshots.Insert(ctx, snap.Summary()); err != nil {
		return true, fmt.Errorf("insert snapshot summary: %w", err)
	}
	return true, nil
}

// rewind restores the previous sample time after a failed write, unless a
// newer snapshot has been sampled since.
func (s *TrackService) rewind(failed, prev time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last.Equal(failed) {
		s.last = prev
	}
}

// Trail returns the latest points of a drone, oldest first, and the
// great-circle length of the path through them.
func (s *TrackService) Trail(ctx context.Context, droneID string, limit int) (*domain.Trail, error) {
	if droneID == "" {
		return nil, fmt.Errorf("drone id must not be empty")
	}
	if limit <= 0 || limit > 1000 {
		limit = DefaultTrailLimit
	}
	points, err := s.tracks.Latest(ctx, droneID, limit)
	if err != nil {
		return nil, fmt.Errorf("latest track points: %w", err)
	}

	trail := &domain.Trail{DroneID: droneID, Points: points}
	for i := 1; i < len(points); i++ {
		a, b := points[i-1].Location, points[i].Location
		trail.LengthMeters += geospatial.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
	}
	if trail.Points == nil {
		trail.Points = []domain.TrackPoint{}
	}
	return trail, nil
}

// History returns snapshot summaries, newest first.
func (s *TrackService) History(ctx context.Context, offset, limit int) ([]domain.SnapshotSummary, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.snapshots.List(ctx, offset, limit)
}

// PruneTracks deletes track points recorded before cutoff.
func (s *TrackService) PruneTracks(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.tracks.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune track points: %w", err)
	}
	return n, nil
}

// PruneSnapshots deletes snapshot summaries recorded before cutoff.
func (s *TrackService) PruneSnapshots(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.snapshots.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune snapshot summaries: %w", err)
	}
	return n, nil
}
