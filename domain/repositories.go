package domain

import (
	"context"
	"time"
)

// ConnectionRepository persists Connections. Implementations must enforce the
// (UserID, Provider) uniqueness rule themselves.
type ConnectionRepository interface {
	// Upsert creates or replaces the credential fields of the connection for
	// (userID, provider) in a single atomic operation. It returns
	// ErrConnectionConflict when a concurrent insert won the race.
	Upsert(ctx context.Context, userID string, provider Provider, cred *Credential, now time.Time) (*Connection, error)
	// GetByID returns the connection only when it belongs to userID.
	GetByID(ctx context.Context, id, userID string) (*Connection, error)
	// FindByID is the unscoped lookup used by background jobs.
	FindByID(ctx context.Context, id string) (*Connection, error)
	GetByProvider(ctx context.Context, userID string, provider Provider) (*Connection, error)
	List(ctx context.Context, userID string, activeOnly bool) ([]*Connection, error)
	ListActive(ctx context.Context) ([]*Connection, error)
	Update(ctx context.Context, id, userID string, patch *ConnectionPatch, now time.Time) (*Connection, error)
	// RecordSync writes only last_sync_at and last_sync_error.
	RecordSync(ctx context.Context, id string, at time.Time, syncErr *string) error
	Delete(ctx context.Context, id, userID string) error
	DeleteByProvider(ctx context.Context, userID string, provider Provider) error
}

// StateLedger stores handshake states until they are consumed or expire.
type StateLedger interface {
	Save(ctx context.Context, state *HandshakeState) error
	// Lookup reads a state without consuming it.
	Lookup(ctx context.Context, state string) (*HandshakeState, error)
	// Consume atomically removes and returns the state issued for provider.
	// Expired records are removed as well; callers check ExpiresAt.
	Consume(ctx context.Context, state string, provider Provider) (*HandshakeState, error)
}

// SyncRunRepository persists SyncRuns.
type SyncRunRepository interface {
	Create(ctx context.Context, run *SyncRun) error
	// Complete transitions a running run to a terminal status. It returns
	// ErrSyncRunCompleted when the run is no longer running.
	Complete(ctx context.Context, id string, status SyncStatus, counters SyncCounters,
		errMsg *string, errDetail map[string]any, at time.Time) (*SyncRun, error)
	History(ctx context.Context, connectionID string, limit int) ([]*SyncRun, error)
	Latest(ctx context.Context, connectionID string) (*SyncRun, error)
}
