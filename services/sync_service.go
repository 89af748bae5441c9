package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pilab-dev/fitlink/domain"
	"github.com/pilab-dev/fitlink/internal/audit"
	"github.com/pilab-dev/fitlink/internal/metrics"
	"github.com/rs/zerolog/log"
)

// ActivityFetcher pulls new data for one connection from its provider. An error
// wrapping domain.ErrPartialSync means some records were imported.
type ActivityFetcher interface {
	Fetch(ctx context.Context, conn *domain.Connection) (domain.SyncCounters, error)
}

// ActivityFetcherFunc adapts a function to ActivityFetcher.
type ActivityFetcherFunc func(ctx context.Context, conn *domain.Connection) (domain.SyncCounters, error)

func (f ActivityFetcherFunc) Fetch(ctx context.Context, conn *domain.Connection) (domain.SyncCounters, error) {
	return f(ctx, conn)
}

// noopFetcher stands in for providers whose data import is not built yet. The
// run still gets recorded so last_sync_at moves.
var noopFetcher = ActivityFetcherFunc(func(context.Context, *domain.Connection) (domain.SyncCounters, error) {
	return domain.SyncCounters{}, nil
})

// SyncService drives sync runs: it opens a run, calls the provider fetcher and
// always closes the run, whatever happens in between.
type SyncService struct {
	connections *ConnectionService
	tracker     *SyncTracker
	fetchers    map[domain.Provider]ActivityFetcher
	now         func() time.Time
}

// NewSyncService creates a new SyncService. Providers missing from fetchers use
// a fetcher that reports zero records.
func NewSyncService(connections *ConnectionService, tracker *SyncTracker, fetchers map[domain.Provider]ActivityFetcher) *SyncService {
	if fetchers == nil {
		fetchers = map[domain.Provider]ActivityFetcher{}
	}
	return &SyncService{
		connections: connections,
		tracker:     tracker,
		fetchers:    fetchers,
		now:         tracker.now,
	}
}

// TriggerManual runs a sync on behalf of the connection owner.
func (s *SyncService) TriggerManual(ctx context.Context, connectionID, userID string) (*domain.SyncRun, error) {
	conn, err := s.connections.Get(ctx, connectionID, userID)
	if err != nil {
		return nil, err
	}
	if !conn.IsActive {
		return nil, domain.ErrConnectionInactive
	}
	return s.run(ctx, conn)
}

// RunScheduled runs a background sync. Connections that were deleted or
// disabled since the job was queued are skipped without error.
func (s *SyncService) RunScheduled(ctx context.Context, connectionID string) (*domain.SyncRun, error) {
	conn, err := s.connections.FindByID(ctx, connectionID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Info().Str("connectionID", connectionID).Msg("Skipping sync for deleted connection")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !conn.IsActive {
		log.Info().Str("connectionID", connectionID).Msg("Skipping sync for inactive connection")
		return nil, nil
	}
	return s.run(ctx, conn)
}

func (s *SyncService) run(ctx context.Context, conn *domain.Connection) (run *domain.SyncRun, err error) {
	runID, err := s.tracker.Start(ctx, conn.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to start sync: %w", err)
	}

	completed := false
	defer func() {
		if completed {
			return
		}
		r := recover()
		msg := "sync aborted"
		if r != nil {
			msg = fmt.Sprintf("sync panicked: %v", r)
		}
		s.finish(context.WithoutCancel(ctx), conn, runID, domain.SyncStatusFailed, domain.SyncCounters{}, errors.New(msg))
		if r != nil {
			panic(r)
		}
	}()

	fetcher, ok := s.fetchers[conn.Provider]
	if !ok {
		fetcher = noopFetcher
	}

	counters, fetchErr := fetcher.Fetch(ctx, conn)

	status := domain.SyncStatusSuccess
	switch {
	case fetchErr == nil:
	case errors.Is(fetchErr, domain.ErrPartialSync):
		status = domain.SyncStatusPartial
	default:
		status = domain.SyncStatusFailed
	}

	// The caller may have gone away; the run must be closed regardless.
	run, err = s.finish(context.WithoutCancel(ctx), conn, runID, status, counters, fetchErr)
	completed = true
	if err != nil {
		return nil, err
	}
	if status == domain.SyncStatusFailed {
		return run, fmt.Errorf("sync failed: %w", fetchErr)
	}
	return run, nil
}

func (s *SyncService) finish(ctx context.Context, conn *domain.Connection, runID string, status domain.SyncStatus,
	counters domain.SyncCounters, syncErr error,
) (*domain.SyncRun, error) {
	var errMsg *string
	var errDetail map[string]any
	if syncErr != nil {
		msg := syncErr.Error()
		errMsg = &msg
		errDetail = map[string]any{
			"error_type": fmt.Sprintf("%T", syncErr),
			"provider":   conn.Provider.String(),
		}
	}

	run, err := s.tracker.Complete(ctx, runID, status, counters, errMsg, errDetail)
	if err != nil {
		log.Error().Err(err).Str("runID", runID).Msg("Failed to complete sync run")
		return nil, fmt.Errorf("failed to complete sync: %w", err)
	}

	if err := s.connections.RecordSync(ctx, conn.ID, s.now(), errMsg); err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Warn().Err(err).Str("connectionID", conn.ID).Msg("Failed to record sync outcome on connection")
	}

	metrics.SyncRunsTotal.WithLabelValues(conn.Provider.String(), string(status)).Inc()
	metrics.SyncRecordsFetchedTotal.WithLabelValues(conn.Provider.String()).Add(float64(counters.Fetched))
	audit.Log(audit.ActionSync, conn.UserID, conn.ID, fmt.Sprintf("run=%s status=%s", runID, status), status != domain.SyncStatusFailed, syncErr)

	return run, nil
}
