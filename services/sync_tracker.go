package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pilab-dev/fitlink/domain"
)

const (
	// DefaultHistoryLimit is used when a caller does not ask for a limit.
	DefaultHistoryLimit = 10
	// MaxHistoryLimit caps a single History call.
	MaxHistoryLimit = 100
)

// SyncTracker records the lifecycle of sync runs. It does not serialize runs
// per connection; callers decide whether a sync may start.
type SyncTracker struct {
	repo domain.SyncRunRepository
	now  func() time.Time
}

// NewSyncTracker creates a new SyncTracker. A nil now uses the UTC wall clock.
func NewSyncTracker(repo domain.SyncRunRepository, now func() time.Time) *SyncTracker {
	if now == nil {
		now = utcNow
	}
	return &SyncTracker{repo: repo, now: now}
}

// Start opens a running run with zeroed counters.
func (t *SyncTracker) Start(ctx context.Context, connectionID string) (string, error) {
	run := &domain.SyncRun{
		ID:           uuid.NewString(),
		ConnectionID: connectionID,
		StartedAt:    t.now(),
		Status:       domain.SyncStatusRunning,
	}
	if err := t.repo.Create(ctx, run); err != nil {
		return "", err
	}
	return run.ID, nil
}

// Complete closes a running run. A run can be completed exactly once.
func (t *SyncTracker) Complete(ctx context.Context, runID string, status domain.SyncStatus, counters domain.SyncCounters,
	errMsg *string, errDetail map[string]any,
) (*domain.SyncRun, error) {
	if !status.IsTerminal() {
		return nil, domain.ErrInvalidSyncStatus
	}
	return t.repo.Complete(ctx, runID, status, counters, errMsg, errDetail, t.now())
}

// History returns up to limit runs, newest first.
func (t *SyncTracker) History(ctx context.Context, connectionID string, limit int) ([]*domain.SyncRun, error) {
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, domain.ErrInvalidLimit
	}
	return t.repo.History(ctx, connectionID, limit)
}

// Latest returns the most recently started run, if any.
func (t *SyncTracker) Latest(ctx context.Context, connectionID string) (*domain.SyncRun, bool, error) {
	run, err := t.repo.Latest(ctx, connectionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return run, true, nil
}
