package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/pilab-dev/fitlink/domain"
)

// SyncRunRepository is an append-only, mutex-guarded domain.SyncRunRepository.
type SyncRunRepository struct {
	mu   sync.RWMutex
	runs map[string]*domain.SyncRun
}

var _ domain.SyncRunRepository = (*SyncRunRepository)(nil)

func NewSyncRunRepository() *SyncRunRepository {
	return &SyncRunRepository{runs: make(map[string]*domain.SyncRun)}
}

func (r *SyncRunRepository) Create(_ context.Context, run *domain.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[run.ID] = cloneRun(run)
	return nil
}

func (r *SyncRunRepository) Complete(_ context.Context, id string, status domain.SyncStatus, counters domain.SyncCounters,
	errMsg *string, errDetail map[string]any, at time.Time,
) (*domain.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if run.Status != domain.SyncStatusRunning {
		return nil, domain.ErrSyncRunCompleted
	}

	run.Status = status
	run.SyncCounters = counters
	run.CompletedAt = &at
	if errMsg != nil {
		msg := *errMsg
		run.ErrorMessage = &msg
	}
	run.ErrorDetail = maps.Clone(errDetail)

	return cloneRun(run), nil
}

func (r *SyncRunRepository) History(_ context.Context, connectionID string, limit int) ([]*domain.SyncRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.SyncRun, 0)
	for _, run := range r.runs {
		if run.ConnectionID == connectionID {
			out = append(out, cloneRun(run))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *SyncRunRepository) Latest(ctx context.Context, connectionID string) (*domain.SyncRun, error) {
	runs, _ := r.History(ctx, connectionID, 1)
	if len(runs) == 0 {
		return nil, domain.ErrNotFound
	}
	return runs[0], nil
}

func cloneRun(run *domain.SyncRun) *domain.SyncRun {
	out := *run
	out.CompletedAt = cloneTime(run.CompletedAt)
	if run.ErrorMessage != nil {
		msg := *run.ErrorMessage
		out.ErrorMessage = &msg
	}
	out.ErrorDetail = maps.Clone(run.ErrorDetail)
	return &out
}
