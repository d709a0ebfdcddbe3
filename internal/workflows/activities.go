package workflows

import (
	"context"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/samirrijal/vertiwatch/internal/core/usecases"
)

// RetentionActivities holds the activity implementations for the retention workflow.
type RetentionActivities struct {
	Tracks *usecases.TrackService
}

// PruneTracks deletes track points recorded before cutoff.
func (a *RetentionActivities) PruneTracks(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := a.Tracks.PruneTracks(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	activity.GetLogger(ctx).Info("pruned track points", "deleted", n, "cutoff", cutoff)
	return n, nil
}

// PruneSnapshots deletes snapshot summaries recorded before cutoff.
func (a *RetentionActivities) PruneSnapshots(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := a.Tracks.PruneSnapshots(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	activity.GetLogger(ctx).Info("pruned snapshot summaries", "deleted", n, "cutoff", cutoff)
	return n, nil
}
