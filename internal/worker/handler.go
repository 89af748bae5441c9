package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/pilab-dev/fitlink/domain"
	"github.com/rs/zerolog/log"
)

// ScheduledSyncer runs a background sync. Implemented by services.SyncService.
type ScheduledSyncer interface {
	RunScheduled(ctx context.Context, connectionID string) (*domain.SyncRun, error)
}

// Handler processes queued tasks.
type Handler struct {
	syncer      ScheduledSyncer
	taskTimeout time.Duration
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithTaskTimeout bounds a single sync.
func WithTaskTimeout(timeout time.Duration) HandlerOption {
	return func(h *Handler) {
		h.taskTimeout = timeout
	}
}

// NewHandler creates a new task handler.
func NewHandler(syncer ScheduledSyncer, opts ...HandlerOption) *Handler {
	h := &Handler{
		syncer:      syncer,
		taskTimeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ProcessTask processes a task based on its type.
func (h *Handler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	ctx, cancel := context.WithTimeout(ctx, h.taskTimeout)
	defer cancel()

	switch task.Type() {
	case TypeConnectionSync:
		return h.processSync(ctx, task)
	default:
		return fmt.Errorf("unknown task type %q: %w", task.Type(), asynq.SkipRetry)
	}
}

func (h *Handler) processSync(ctx context.Context, task *asynq.Task) error {
	var payload SyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid sync payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.ConnectionID == "" {
		return fmt.Errorf("sync payload without connection id: %w", asynq.SkipRetry)
	}

	run, err := h.syncer.RunScheduled(ctx, payload.ConnectionID)
	switch {
	case err != nil && run != nil:
		// The failure is on record as a failed run; the next schedule retries.
		log.Warn().Err(err).Str("connectionID", payload.ConnectionID).Str("runID", run.ID).Msg("Scheduled sync failed")
		return nil
	case err != nil:
		return fmt.Errorf("scheduled sync of %s: %w", payload.ConnectionID, err)
	case run == nil:
		return nil
	}

	log.Info().Str("connectionID", payload.ConnectionID).Str("runID", run.ID).
		Str("status", string(run.Status)).Int("fetched", run.Fetched).Msg("Scheduled sync completed")
	return nil
}

// NewServeMux routes every task type to h.
func NewServeMux(h *Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeConnectionSync, h)
	return mux
}
