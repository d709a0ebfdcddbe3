package workflows

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// RetentionWorkflowID is the fixed id of the cron workflow, so that starting
// the janitor twice does not schedule two crons.
const RetentionWorkflowID = "vertiwatch-retention"

// RetentionInput is the input for the retention workflow.
type RetentionInput struct {
	MaxAge time.Duration
}

// RetentionResult reports what one run deleted.
type RetentionResult struct {
	Cutoff    time.Time
	Tracks    int64
	Snapshots int64
}

// RetentionWorkflow deletes recorded track points and snapshot summaries
// older than MaxAge. Both activities receive the same cutoff, taken from
// workflow time so that replays agree.
func RetentionWorkflow(ctx workflow.Context, input RetentionInput) (*RetentionResult, error) {
	if input.MaxAge <= 0 {
		return nil, temporal.NewNonRetryableApplicationError("max age must be positive", "InvalidInput", errors.New("invalid max age"))
	}

	logger := workflow.GetLogger(ctx)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	res := &RetentionResult{Cutoff: workflow.Now(ctx).Add(-input.MaxAge)}
	logger.Info("Starting retention workflow", "cutoff", res.Cutoff)

	if err := workflow.ExecuteActivity(ctx, "PruneTracks", res.Cutoff).Get(ctx, &res.Tracks); err != nil {
		return nil, err
	}
	if err := workflow.ExecuteActivity(ctx, "PruneSnapshots", res.Cutoff).Get(ctx, &res.Snapshots); err != nil {
		return nil, err
	}

	logger.Info("Retention complete", "tracks", res.Tracks, "snapshots", res.Snapshots)
	return res, nil
}
