package workflows_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/vertiwatch/internal/core/domain"
	"github.com/samirrijal/vertiwatch/internal/core/usecases"
	"github.com/samirrijal/vertiwatch/internal/workflows"
)

var start = time.Date(2026, 5, 4, 3, 0, 0, 0, time.UTC)

func cutoffAt(want time.Time) interface{} {
	return mock.MatchedBy(func(c time.Time) bool { return c.Equal(want) })
}

func TestRetentionWorkflow(t *testing.T) {
	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()
	env.SetStartTime(start)
	env.RegisterActivity(&workflows.RetentionActivities{})

	want := start.Add(-24 * time.Hour)
	env.OnActivity("PruneTracks", mock.Anything, cutoffAt(want)).Return(int64(120), nil).Once()
	env.OnActivity("PruneSnapshots", mock.Anything, cutoffAt(want)).Return(int64(7), nil).Once()

	env.ExecuteWorkflow(workflows.RetentionWorkflow, workflows.RetentionInput{MaxAge: 24 * time.Hour})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var res workflows.RetentionResult
	require.NoError(t, env.GetWorkflowResult(&res))
	require.True(t, res.Cutoff.Equal(want), "cutoff %v", res.Cutoff)
	require.Equal(t, int64(120), res.Tracks)
	require.Equal(t, int64(7), res.Snapshots)
	env.AssertExpectations(t)
}

func TestRetentionWorkflow_TrackFailureSkipsSnapshots(t *testing.T) {
	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()
	env.RegisterActivity(&workflows.RetentionActivities{})

	env.OnActivity("PruneTracks", mock.Anything, mock.Anything).Return(int64(0), errors.New("relation does not exist"))
	env.OnActivity("PruneSnapshots", mock.Anything, mock.Anything).Return(int64(0), nil)

	env.ExecuteWorkflow(workflows.RetentionWorkflow, workflows.RetentionInput{MaxAge: time.Hour})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	env.AssertNotCalled(t, "PruneSnapshots", mock.Anything, mock.Anything)
}

func TestRetentionWorkflow_RejectsNonPositiveMaxAge(t *testing.T) {
	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()
	env.RegisterActivity(&workflows.RetentionActivities{})

	env.ExecuteWorkflow(workflows.RetentionWorkflow, workflows.RetentionInput{})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
}

// --- Activities ---

type trackRepoMock struct{ mock.Mock }

func (m *trackRepoMock) InsertBatch(ctx context.Context, points []domain.TrackPoint) error {
	return m.Called(ctx, points).Error(0)
}

func (m *trackRepoMock) Latest(ctx context.Context, droneID string, limit int) ([]domain.TrackPoint, error) {
	args := m.Called(ctx, droneID, limit)
	return args.Get(0).([]domain.TrackPoint), args.Error(1)
}

func (m *trackRepoMock) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type snapshotRepoMock struct{ mock.Mock }

func (m *snapshotRepoMock) Insert(ctx context.Context, sum domain.SnapshotSummary) error {
	return m.Called(ctx, sum).Error(0)
}

func (m *snapshotRepoMock) List(ctx context.Context, offset, limit int) ([]domain.SnapshotSummary, int, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]domain.SnapshotSummary), args.Int(1), args.Error(2)
}

func (m *snapshotRepoMock) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func TestRetentionActivities(t *testing.T) {
	cutoff := start.Add(-time.Hour)
	tracks := &trackRepoMock{}
	snaps := &snapshotRepoMock{}
	tracks.On("DeleteBefore", mock.Anything, cutoffAt(cutoff)).Return(int64(3), nil)
	snaps.On("DeleteBefore", mock.Anything, cutoffAt(cutoff)).Return(int64(0), errors.New("lock timeout"))

	acts := &workflows.RetentionActivities{Tracks: usecases.NewTrackService(tracks, snaps, time.Second)}

	var s testsuite.WorkflowTestSuite
	env := s.NewTestActivityEnvironment()
	env.RegisterActivity(acts)

	val, err := env.ExecuteActivity(acts.PruneTracks, cutoff)
	require.NoError(t, err)
	var n int64
	require.NoError(t, val.Get(&n))
	require.Equal(t, int64(3), n)

	_, err = env.ExecuteActivity(acts.PruneSnapshots, cutoff)
	require.Error(t, err)
	require.Contains(t, err.Error(), "lock timeout")

	tracks.AssertExpectations(t)
	snaps.AssertExpectations(t)
}
