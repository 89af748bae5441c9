package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/pilab-dev/fitlink/domain"
)

// MemoryStateLedger implements domain.StateLedger using ttlcache. States
// disappear on their own once ExpiresAt passes.
type MemoryStateLedger struct {
	// mu makes the read-check-delete in Consume atomic.
	mu    sync.Mutex
	cache *ttlcache.Cache[string, *domain.HandshakeState]
}

var _ domain.StateLedger = (*MemoryStateLedger)(nil)

// NewMemoryStateLedger creates a ledger and starts its expiry loop. Call Close
// to stop it.
func NewMemoryStateLedger() *MemoryStateLedger {
	cache := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, *domain.HandshakeState](),
	)

	go cache.Start()

	return &MemoryStateLedger{cache: cache}
}

// Save implements domain.StateLedger.
func (l *MemoryStateLedger) Save(_ context.Context, state *domain.HandshakeState) error {
	ttl := time.Until(state.ExpiresAt)
	if ttl <= 0 {
		// ttlcache treats negative TTLs as "never expire".
		ttl = time.Nanosecond
	}

	copied := *state
	l.cache.Set(state.State, &copied, ttl)

	return nil
}

// Lookup implements domain.StateLedger.
func (l *MemoryStateLedger) Lookup(_ context.Context, state string) (*domain.HandshakeState, error) {
	item := l.cache.Get(state)
	if item == nil {
		return nil, domain.ErrNotFound
	}

	copied := *item.Value()
	return &copied, nil
}

// Consume implements domain.StateLedger.
func (l *MemoryStateLedger) Consume(_ context.Context, state string, provider domain.Provider) (*domain.HandshakeState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.cache.Get(state)
	if item == nil {
		// Drop an expired entry that the cleanup loop has not reached yet.
		l.cache.Delete(state)
		return nil, domain.ErrNotFound
	}
	if item.Value().Provider != provider {
		return nil, domain.ErrNotFound
	}
	l.cache.Delete(state)

	copied := *item.Value()
	return &copied, nil
}

// Len returns the number of live states.
func (l *MemoryStateLedger) Len() int {
	return l.cache.Len()
}

// Close stops the cleanup goroutine.
func (l *MemoryStateLedger) Close() error {
	l.cache.Stop()

	return nil
}
