package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/pilab-dev/fitlink/domain"
	"github.com/rs/zerolog/log"
)

// Enqueuer is the subset of *asynq.Client used to schedule syncs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ActiveConnectionLister lists the connections due for a scheduled sync.
type ActiveConnectionLister interface {
	ListActive(ctx context.Context) ([]*domain.Connection, error)
}

// EnqueueResult counts what EnqueueSyncs did.
type EnqueueResult struct {
	Enqueued int
	// Skipped connections already had a sync queued within the interval.
	Skipped int
}

// EnqueueSyncs queues one sync per active connection. A connection gets at
// most one queued task per interval.
func EnqueueSyncs(ctx context.Context, enq Enqueuer, conns ActiveConnectionLister, interval time.Duration) (EnqueueResult, error) {
	var res EnqueueResult

	active, err := conns.ListActive(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list active connections: %w", err)
	}

	for _, conn := range active {
		task, err := NewSyncTask(conn.ID)
		if err != nil {
			return res, err
		}

		_, err = enq.EnqueueContext(ctx, task,
			asynq.Unique(interval),
			asynq.MaxRetry(3),
			asynq.Timeout(5*time.Minute),
		)
		if errors.Is(err, asynq.ErrDuplicateTask) {
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("failed to enqueue sync for %s: %w", conn.ID, err)
		}
		res.Enqueued++
	}

	log.Info().Int("enqueued", res.Enqueued).Int("skipped", res.Skipped).Msg("Scheduled syncs enqueued")
	return res, nil
}
