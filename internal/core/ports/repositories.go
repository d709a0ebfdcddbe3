package ports

import (
	"context"
	"time"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
)

// TrackRepository persists recorded drone positions.
type TrackRepository interface {
	InsertBatch(ctx context.Context, points []domain.TrackPoint) error
	// Latest returns up to limit most recent points for a drone, oldest first.
	Latest(ctx context.Context, droneID string, limit int) ([]domain.TrackPoint, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SnapshotRepository persists snapshot summaries.
type SnapshotRepository interface {
	Insert(ctx context.Context, sum domain.SnapshotSummary) error
	// List returns summaries newest first along with the total row count.
	List(ctx context.Context, offset, limit int) ([]domain.SnapshotSummary, int, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
