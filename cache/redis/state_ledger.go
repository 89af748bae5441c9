package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pilab-dev/fitlink/domain"
	"github.com/redis/go-redis/v9"
)

// minStateTTL keeps already-expired states addressable for the brief moment it
// takes to reject them. Redis rejects non-positive expirations.
const minStateTTL = time.Millisecond

// StateLedger implements domain.StateLedger on Redis. Each state lives under a
// provider-scoped key and is consumed with GETDEL, which is atomic.
type StateLedger struct {
	client *redis.Client
	prefix string
}

var _ domain.StateLedger = (*StateLedger)(nil)

// NewStateLedger creates a new [StateLedger].
func NewStateLedger(client *redis.Client, prefix string) *StateLedger {
	return &StateLedger{
		client: client,
		prefix: prefix,
	}
}

func (l *StateLedger) redisKey(provider domain.Provider, state string) string {
	return fmt.Sprintf("%s:state:%s:%s", l.prefix, provider, state)
}

// Save stores the state and lets Redis expire it at ExpiresAt.
func (l *StateLedger) Save(ctx context.Context, state *domain.HandshakeState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal handshake state: %w", err)
	}

	ttl := time.Until(state.ExpiresAt)
	if ttl < minStateTTL {
		ttl = minStateTTL
	}

	if err := l.client.Set(ctx, l.redisKey(state.Provider, state.State), payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: failed to store state in Redis: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

// Lookup probes every provider namespace without consuming anything.
func (l *StateLedger) Lookup(ctx context.Context, state string) (*domain.HandshakeState, error) {
	for _, provider := range domain.AllProviders {
		payload, err := l.client.Get(ctx, l.redisKey(provider, state)).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read state from Redis: %v", domain.ErrStoreUnavailable, err)
		}

		return decodeState(payload)
	}

	return nil, domain.ErrNotFound
}

// Consume atomically fetches and deletes the state issued for provider.
func (l *StateLedger) Consume(ctx context.Context, state string, provider domain.Provider) (*domain.HandshakeState, error) {
	payload, err := l.client.GetDel(ctx, l.redisKey(provider, state)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to consume state in Redis: %v", domain.ErrStoreUnavailable, err)
	}

	return decodeState(payload)
}

func decodeState(payload []byte) (*domain.HandshakeState, error) {
	var state domain.HandshakeState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal handshake state: %w", err)
	}
	return &state, nil
}
