package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/pilab-dev/fitlink/domain"
	"github.com/pilab-dev/fitlink/internal/audit"
	"github.com/pilab-dev/fitlink/internal/metrics"
	"github.com/rs/zerolog/log"
)

// defaultUpsertRetries bounds how often a lost insert race is replayed. The
// replay hits the row the winner created and becomes a plain update.
const defaultUpsertRetries = 3

// ConnectionService reconciles provider credentials into at most one
// Connection per (user, provider) and serves owner-scoped reads and writes.
type ConnectionService struct {
	repo          domain.ConnectionRepository
	now           func() time.Time
	upsertRetries int
}

// ConnectionOption customizes a ConnectionService.
type ConnectionOption func(*ConnectionService)

// WithConnectionClock overrides the time source.
func WithConnectionClock(now func() time.Time) ConnectionOption {
	return func(s *ConnectionService) {
		s.now = now
	}
}

// WithUpsertRetries overrides defaultUpsertRetries.
func WithUpsertRetries(n int) ConnectionOption {
	return func(s *ConnectionService) {
		s.upsertRetries = n
	}
}

// NewConnectionService creates a new ConnectionService.
func NewConnectionService(repo domain.ConnectionRepository, opts ...ConnectionOption) *ConnectionService {
	s := &ConnectionService{
		repo:          repo,
		now:           utcNow,
		upsertRetries: defaultUpsertRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upsert stores cred as the live credential for (userID, provider). An existing
// connection keeps its id and created_at; everything the provider returned is
// replaced, the connection is re-activated and last_sync_at is reset to now.
// Concurrent upserts resolve as last-write-wins.
func (s *ConnectionService) Upsert(ctx context.Context, userID string, provider domain.Provider, cred *domain.Credential) (*domain.Connection, error) {
	for attempt := 0; ; attempt++ {
		conn, err := s.repo.Upsert(ctx, userID, provider, cred, s.now())
		if errors.Is(err, domain.ErrConnectionConflict) && attempt < s.upsertRetries {
			log.Debug().Str("userID", userID).Str("provider", provider.String()).Int("attempt", attempt+1).
				Msg("Connection upsert lost an insert race, retrying")
			continue
		}
		return conn, err
	}
}

// Get returns the connection only when userID owns it.
func (s *ConnectionService) Get(ctx context.Context, id, userID string) (*domain.Connection, error) {
	return s.repo.GetByID(ctx, id, userID)
}

// GetByProvider reports found=false instead of an error when the user has no
// connection to provider.
func (s *ConnectionService) GetByProvider(ctx context.Context, userID string, provider domain.Provider) (*domain.Connection, bool, error) {
	conn, err := s.repo.GetByProvider(ctx, userID, provider)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return conn, true, nil
}

// List returns the user's connections, optionally only the active ones.
func (s *ConnectionService) List(ctx context.Context, userID string, activeOnly bool) ([]*domain.Connection, error) {
	return s.repo.List(ctx, userID, activeOnly)
}

// FindByID returns a connection regardless of owner. Only background jobs
// that already hold a trusted id may call it.
func (s *ConnectionService) FindByID(ctx context.Context, id string) (*domain.Connection, error) {
	return s.repo.FindByID(ctx, id)
}

// ListActive returns every active connection. Used by the sync scheduler.
func (s *ConnectionService) ListActive(ctx context.Context) ([]*domain.Connection, error) {
	return s.repo.ListActive(ctx)
}

// Update applies a partial update. An empty patch is rejected before the store
// is touched.
func (s *ConnectionService) Update(ctx context.Context, id, userID string, patch *domain.ConnectionPatch) (*domain.Connection, error) {
	if patch.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	return s.repo.Update(ctx, id, userID, patch, s.now())
}

// SetActive enables or disables a connection without touching its tokens.
func (s *ConnectionService) SetActive(ctx context.Context, id, userID string, active bool) (*domain.Connection, error) {
	conn, err := s.Update(ctx, id, userID, &domain.ConnectionPatch{IsActive: &active})
	audit.Log(audit.ActionToggle, userID, id, "is_active="+strconv.FormatBool(active), err == nil, err)
	return conn, err
}

// Delete hard-deletes a connection by id. Its sync history is kept.
func (s *ConnectionService) Delete(ctx context.Context, id, userID string) error {
	conn, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	err = s.repo.Delete(ctx, id, userID)
	if err == nil {
		metrics.ConnectionsDeletedTotal.WithLabelValues(conn.Provider.String()).Inc()
	}
	audit.Log(audit.ActionDelete, userID, id, "provider="+conn.Provider.String(), err == nil, err)
	return err
}

// Disconnect hard-deletes the user's connection to provider.
func (s *ConnectionService) Disconnect(ctx context.Context, userID string, provider domain.Provider) error {
	err := s.repo.DeleteByProvider(ctx, userID, provider)
	if err == nil {
		metrics.ConnectionsDeletedTotal.WithLabelValues(provider.String()).Inc()
	}
	audit.Log(audit.ActionDisconnect, userID, provider.String(), "", err == nil, err)
	return err
}

// RecordSync stores the outcome of the latest sync on the connection.
func (s *ConnectionService) RecordSync(ctx context.Context, id string, at time.Time, syncErr *string) error {
	return s.repo.RecordSync(ctx, id, at, syncErr)
}

// Summary aggregates the user's connections for the dashboard.
func (s *ConnectionService) Summary(ctx context.Context, userID string) (*domain.ConnectionSummary, error) {
	conns, err := s.repo.List(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	summary := &domain.ConnectionSummary{
		TotalConnections: len(conns),
		Providers:        make([]domain.Provider, 0, len(conns)),
		Connections:      make([]domain.ConnectionDashboard, 0, len(conns)),
	}
	for _, c := range conns {
		if c.IsActive {
			summary.ActiveConnections++
			summary.Providers = append(summary.Providers, c.Provider)
		}
		summary.Connections = append(summary.Connections, domain.ConnectionDashboard{
			ID:         c.ID,
			Provider:   c.Provider,
			IsActive:   c.IsActive,
			LastSyncAt: c.LastSyncAt,
			HasError:   c.LastSyncError != nil && *c.LastSyncError != "",
		})
	}
	summary.InactiveConnections = summary.TotalConnections - summary.ActiveConnections

	return summary, nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
