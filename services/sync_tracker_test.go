package services

import (
	"context"
	"testing"
	"time"

	"github.com/pilab-dev/fitlink/domain"
	"github.com/pilab-dev/fitlink/domain/mocks"
	"github.com/pilab-dev/fitlink/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSyncTracker_StartCompleteLatest(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	tracker := NewSyncTracker(memory.NewSyncRunRepository(), clock.Now)
	ctx := context.Background()

	runID, err := tracker.Start(ctx, "5")
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	counters := domain.SyncCounters{Fetched: 25, Created: 20, Updated: 5, Skipped: 0}
	_, err = tracker.Complete(ctx, runID, domain.SyncStatusSuccess, counters, nil, nil)
	require.NoError(t, err)

	latest, found, err := tracker.Latest(ctx, "5")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, runID, latest.ID)
	assert.Equal(t, domain.SyncStatusSuccess, latest.Status)
	require.NotNil(t, latest.CompletedAt)
	assert.Equal(t, clock.Now(), *latest.CompletedAt)
	assert.Equal(t, counters, latest.SyncCounters)
}

func TestSyncTracker_CompleteIsTerminal(t *testing.T) {
	tracker := NewSyncTracker(memory.NewSyncRunRepository(), nil)
	ctx := context.Background()

	runID, err := tracker.Start(ctx, "5")
	require.NoError(t, err)

	msg := "boom"
	_, err = tracker.Complete(ctx, runID, domain.SyncStatusFailed, domain.SyncCounters{Fetched: 3}, &msg, nil)
	require.NoError(t, err)

	_, err = tracker.Complete(ctx, runID, domain.SyncStatusSuccess, domain.SyncCounters{Fetched: 99}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrSyncRunCompleted)

	latest, _, err := tracker.Latest(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusFailed, latest.Status)
	assert.Equal(t, 3, latest.Fetched)
	require.NotNil(t, latest.ErrorMessage)
	assert.Equal(t, "boom", *latest.ErrorMessage)
}

func TestSyncTracker_CompleteRejectsRunningStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockSyncRunRepository(ctrl)
	tracker := NewSyncTracker(repo, nil)

	_, err := tracker.Complete(context.Background(), "r1", domain.SyncStatusRunning, domain.SyncCounters{}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidSyncStatus)

	_, err = tracker.Complete(context.Background(), "r1", domain.SyncStatus("cancelled"), domain.SyncCounters{}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidSyncStatus)
}

func TestSyncTracker_HistoryLimit(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	tracker := NewSyncTracker(memory.NewSyncRunRepository(), clock.Now)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := tracker.Start(ctx, "c1")
		require.NoError(t, err)
		ids = append(ids, id)
		clock.Advance(time.Minute)
	}

	runs, err := tracker.History(ctx, "c1", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)

	for _, limit := range []int{0, -1, 101} {
		_, err = tracker.History(ctx, "c1", limit)
		assert.ErrorIs(t, err, domain.ErrInvalidLimit, "limit %d", limit)
	}

	_, err = tracker.History(ctx, "c1", MaxHistoryLimit)
	assert.NoError(t, err)

	_, found, err := tracker.Latest(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, found)
}
