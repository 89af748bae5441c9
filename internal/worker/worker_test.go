package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/pilab-dev/fitlink/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncerFunc func(ctx context.Context, connectionID string) (*domain.SyncRun, error)

func (f syncerFunc) RunScheduled(ctx context.Context, connectionID string) (*domain.SyncRun, error) {
	return f(ctx, connectionID)
}

func TestNewSyncTask(t *testing.T) {
	task, err := NewSyncTask("c-1")
	require.NoError(t, err)
	assert.Equal(t, TypeConnectionSync, task.Type())
	assert.JSONEq(t, `{"connection_id":"c-1"}`, string(task.Payload()))

	_, err = NewSyncTask("")
	assert.Error(t, err)
}

func TestHandler_ProcessSync(t *testing.T) {
	var got string
	h := NewHandler(syncerFunc(func(ctx context.Context, connectionID string) (*domain.SyncRun, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		got = connectionID
		return &domain.SyncRun{ID: "r1", Status: domain.SyncStatusSuccess}, nil
	}), WithTaskTimeout(time.Second))

	task, err := NewSyncTask("c-1")
	require.NoError(t, err)

	require.NoError(t, h.ProcessTask(context.Background(), task))
	assert.Equal(t, "c-1", got)
}

func TestHandler_Outcomes(t *testing.T) {
	task, err := NewSyncTask("c-1")
	require.NoError(t, err)

	t.Run("skipped connection", func(t *testing.T) {
		h := NewHandler(syncerFunc(func(context.Context, string) (*domain.SyncRun, error) {
			return nil, nil
		}))
		assert.NoError(t, h.ProcessTask(context.Background(), task))
	})

	t.Run("recorded failure is not retried", func(t *testing.T) {
		h := NewHandler(syncerFunc(func(context.Context, string) (*domain.SyncRun, error) {
			return &domain.SyncRun{ID: "r1", Status: domain.SyncStatusFailed}, errors.New("provider down")
		}))
		assert.NoError(t, h.ProcessTask(context.Background(), task))
	})

	t.Run("store failure is retried", func(t *testing.T) {
		h := NewHandler(syncerFunc(func(context.Context, string) (*domain.SyncRun, error) {
			return nil, domain.ErrStoreUnavailable
		}))
		err := h.ProcessTask(context.Background(), task)
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.NotErrorIs(t, err, asynq.SkipRetry)
	})
}

func TestHandler_BadTasksSkipRetry(t *testing.T) {
	h := NewHandler(syncerFunc(func(context.Context, string) (*domain.SyncRun, error) {
		t.Fatal("syncer must not be called")
		return nil, nil
	}))

	tasks := []*asynq.Task{
		asynq.NewTask("connection:unknown", nil),
		asynq.NewTask(TypeConnectionSync, []byte("not json")),
		asynq.NewTask(TypeConnectionSync, []byte(`{}`)),
	}
	for _, task := range tasks {
		err := h.ProcessTask(context.Background(), task)
		assert.ErrorIs(t, err, asynq.SkipRetry, task.Type())
	}
}

type fakeEnqueuer struct {
	queued    []string
	duplicate map[string]bool
	err       error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	var payload SyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return nil, err
	}
	if f.duplicate[payload.ConnectionID] {
		return nil, asynq.ErrDuplicateTask
	}
	f.queued = append(f.queued, payload.ConnectionID)
	return &asynq.TaskInfo{ID: payload.ConnectionID, Type: task.Type()}, nil
}

type listerFunc func(ctx context.Context) ([]*domain.Connection, error)

func (f listerFunc) ListActive(ctx context.Context) ([]*domain.Connection, error) {
	return f(ctx)
}

func TestEnqueueSyncs(t *testing.T) {
	lister := listerFunc(func(context.Context) ([]*domain.Connection, error) {
		return []*domain.Connection{{ID: "a"}, {ID: "b"}, {ID: "c"}}, nil
	})
	enq := &fakeEnqueuer{duplicate: map[string]bool{"b": true}}

	res, err := EnqueueSyncs(context.Background(), enq, lister, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, EnqueueResult{Enqueued: 2, Skipped: 1}, res)
	assert.Equal(t, []string{"a", "c"}, enq.queued)
}

func TestEnqueueSyncs_Errors(t *testing.T) {
	failing := listerFunc(func(context.Context) ([]*domain.Connection, error) {
		return nil, domain.ErrStoreUnavailable
	})
	_, err := EnqueueSyncs(context.Background(), &fakeEnqueuer{}, failing, time.Hour)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	lister := listerFunc(func(context.Context) ([]*domain.Connection, error) {
		return []*domain.Connection{{ID: "a"}}, nil
	})
	_, err = EnqueueSyncs(context.Background(), &fakeEnqueuer{err: errors.New("redis down")}, lister, time.Hour)
	assert.ErrorContains(t, err, "redis down")
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, time.Second, retryDelay(0, nil, nil))
	assert.Equal(t, 8*time.Second, retryDelay(3, nil, nil))
	assert.Equal(t, maxRetryDelay, retryDelay(15, nil, nil))
	assert.Equal(t, maxRetryDelay, retryDelay(64, nil, nil))
}
