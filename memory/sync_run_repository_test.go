package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/pilab-dev/fitlink/domain"
	"github.com/pilab-dev/fitlink/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncRunRepository_CompleteOnce(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSyncRunRepository()
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &domain.SyncRun{
		ID:           "run-1",
		ConnectionID: "conn-5",
		StartedAt:    started,
		Status:       domain.SyncStatusRunning,
	}))

	counters := domain.SyncCounters{Fetched: 25, Created: 20, Updated: 5}
	run, err := repo.Complete(ctx, "run-1", domain.SyncStatusSuccess, counters, nil, nil, started.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusSuccess, run.Status)
	assert.Equal(t, counters, run.SyncCounters)

	_, err = repo.Complete(ctx, "run-1", domain.SyncStatusFailed, domain.SyncCounters{}, nil, nil, started.Add(2*time.Minute))
	assert.ErrorIs(t, err, domain.ErrSyncRunCompleted)

	latest, err := repo.Latest(ctx, "conn-5")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusSuccess, latest.Status)
	assert.Equal(t, 25, latest.Fetched)

	_, err = repo.Complete(ctx, "missing", domain.SyncStatusSuccess, domain.SyncCounters{}, nil, nil, started)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncRunRepository_HistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSyncRunRepository()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, repo.Create(ctx, &domain.SyncRun{
			ID:           id,
			ConnectionID: "conn-1",
			StartedAt:    base.Add(time.Duration(i) * time.Hour),
			Status:       domain.SyncStatusRunning,
		}))
	}
	require.NoError(t, repo.Create(ctx, &domain.SyncRun{ID: "other", ConnectionID: "conn-2", StartedAt: base, Status: domain.SyncStatusRunning}))

	runs, err := repo.History(ctx, "conn-1", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].ID)
	assert.Equal(t, "r2", runs[1].ID)

	_, err = repo.Latest(ctx, "conn-none")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
