// Package memory provides process-local repositories for development and tests.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pilab-dev/fitlink/domain"
)

type connectionKey struct {
	userID   string
	provider domain.Provider
}

// ConnectionRepository is a mutex-guarded domain.ConnectionRepository. It keeps
// the same (user, provider) uniqueness rule as the MongoDB index.
type ConnectionRepository struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Connection
	byKey map[connectionKey]string
}

var _ domain.ConnectionRepository = (*ConnectionRepository)(nil)

func NewConnectionRepository() *ConnectionRepository {
	return &ConnectionRepository{
		byID:  make(map[string]*domain.Connection),
		byKey: make(map[connectionKey]string),
	}
}

func (r *ConnectionRepository) Upsert(_ context.Context, userID string, provider domain.Provider, cred *domain.Credential, now time.Time) (*domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := connectionKey{userID: userID, provider: provider}
	conn, ok := r.byID[r.byKey[key]]
	if !ok {
		conn = &domain.Connection{
			ID:        uuid.NewString(),
			UserID:    userID,
			Provider:  provider,
			CreatedAt: now,
		}
		r.byID[conn.ID] = conn
		r.byKey[key] = conn.ID
	}

	conn.ProviderUserID = cred.ProviderUserID
	conn.ProviderUsername = cred.ProviderUsername
	conn.ProviderEmail = cred.ProviderEmail
	conn.ProviderProfile = maps.Clone(cred.Profile)
	conn.AccessToken = cred.AccessToken
	conn.RefreshToken = cred.RefreshToken
	conn.TokenExpiresAt = cloneTime(cred.ExpiresAt)
	conn.Scopes = append([]string(nil), cred.Scopes...)
	conn.IsActive = true
	conn.LastSyncAt = cloneTime(&now)
	conn.UpdatedAt = now

	return cloneConnection(conn), nil
}

func (r *ConnectionRepository) GetByID(_ context.Context, id, userID string) (*domain.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.byID[id]
	if !ok || conn.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return cloneConnection(conn), nil
}

func (r *ConnectionRepository) FindByID(_ context.Context, id string) (*domain.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneConnection(conn), nil
}

func (r *ConnectionRepository) GetByProvider(_ context.Context, userID string, provider domain.Provider) (*domain.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.byID[r.byKey[connectionKey{userID: userID, provider: provider}]]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneConnection(conn), nil
}

func (r *ConnectionRepository) List(_ context.Context, userID string, activeOnly bool) ([]*domain.Connection, error) {
	return r.collect(func(c *domain.Connection) bool {
		return c.UserID == userID && (!activeOnly || c.IsActive)
	}), nil
}

func (r *ConnectionRepository) ListActive(_ context.Context) ([]*domain.Connection, error) {
	return r.collect(func(c *domain.Connection) bool {
		return c.IsActive
	}), nil
}

func (r *ConnectionRepository) Update(_ context.Context, id, userID string, patch *domain.ConnectionPatch, now time.Time) (*domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.byID[id]
	if !ok || conn.UserID != userID {
		return nil, domain.ErrNotFound
	}

	if patch.AccessToken != nil {
		conn.AccessToken = *patch.AccessToken
	}
	if patch.RefreshToken != nil {
		conn.RefreshToken = *patch.RefreshToken
	}
	if patch.TokenExpiresAt != nil {
		conn.TokenExpiresAt = cloneTime(patch.TokenExpiresAt)
	}
	if patch.IsActive != nil {
		conn.IsActive = *patch.IsActive
	}
	if patch.LastSyncAt != nil {
		conn.LastSyncAt = cloneTime(patch.LastSyncAt)
	}
	if patch.ProviderProfile != nil {
		conn.ProviderProfile = maps.Clone(patch.ProviderProfile)
	}
	conn.UpdatedAt = now

	return cloneConnection(conn), nil
}

func (r *ConnectionRepository) RecordSync(_ context.Context, id string, at time.Time, syncErr *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	conn.LastSyncAt = &at
	if syncErr != nil {
		msg := *syncErr
		conn.LastSyncError = &msg
	} else {
		conn.LastSyncError = nil
	}

	return nil
}

func (r *ConnectionRepository) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.byID[id]
	if !ok || conn.UserID != userID {
		return domain.ErrNotFound
	}
	r.remove(conn)

	return nil
}

func (r *ConnectionRepository) DeleteByProvider(_ context.Context, userID string, provider domain.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.byID[r.byKey[connectionKey{userID: userID, provider: provider}]]
	if !ok {
		return domain.ErrNotFound
	}
	r.remove(conn)

	return nil
}

func (r *ConnectionRepository) remove(conn *domain.Connection) {
	delete(r.byID, conn.ID)
	delete(r.byKey, connectionKey{userID: conn.UserID, provider: conn.Provider})
}

func (r *ConnectionRepository) collect(match func(*domain.Connection) bool) []*domain.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Connection, 0)
	for _, conn := range r.byID {
		if match(conn) {
			out = append(out, cloneConnection(conn))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out
}

func cloneConnection(c *domain.Connection) *domain.Connection {
	out := *c
	out.ProviderProfile = maps.Clone(c.ProviderProfile)
	out.Scopes = append([]string(nil), c.Scopes...)
	out.TokenExpiresAt = cloneTime(c.TokenExpiresAt)
	out.LastSyncAt = cloneTime(c.LastSyncAt)
	if c.LastSyncError != nil {
		msg := *c.LastSyncError
		out.LastSyncError = &msg
	}
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
