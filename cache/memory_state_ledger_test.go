package cache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pilab-dev/fitlink/cache"
	"github.com/pilab-dev/fitlink/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(state string, provider domain.Provider, ttl time.Duration) *domain.HandshakeState {
	now := time.Now()
	return &domain.HandshakeState{
		ID:        "id-" + state,
		State:     state,
		UserID:    "user-1",
		Provider:  provider,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

func TestMemoryStateLedger_ConsumeOnce(t *testing.T) {
	ctx := context.Background()
	ledger := cache.NewMemoryStateLedger()
	defer ledger.Close()

	require.NoError(t, ledger.Save(ctx, newState("s1", domain.ProviderStrava, time.Minute)))

	looked, err := ledger.Lookup(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderStrava, looked.Provider)

	got, err := ledger.Consume(ctx, "s1", domain.ProviderStrava)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)

	_, err = ledger.Consume(ctx, "s1", domain.ProviderStrava)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = ledger.Lookup(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStateLedger_ProviderMismatchKeepsState(t *testing.T) {
	ctx := context.Background()
	ledger := cache.NewMemoryStateLedger()
	defer ledger.Close()

	require.NoError(t, ledger.Save(ctx, newState("s1", domain.ProviderStrava, time.Minute)))

	_, err := ledger.Consume(ctx, "s1", domain.ProviderPolar)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = ledger.Consume(ctx, "s1", domain.ProviderStrava)
	assert.NoError(t, err)
}

func TestMemoryStateLedger_ExpiredStateIsGone(t *testing.T) {
	ctx := context.Background()
	ledger := cache.NewMemoryStateLedger()
	defer ledger.Close()

	require.NoError(t, ledger.Save(ctx, newState("old", domain.ProviderStrava, -time.Second)))
	time.Sleep(time.Millisecond)

	_, err := ledger.Consume(ctx, "old", domain.ProviderStrava)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, ledger.Len())
}

func TestMemoryStateLedger_ConcurrentConsumeHasOneWinner(t *testing.T) {
	ctx := context.Background()
	ledger := cache.NewMemoryStateLedger()
	defer ledger.Close()

	require.NoError(t, ledger.Save(ctx, newState("race", domain.ProviderPolar, time.Minute)))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Consume(ctx, "race", domain.ProviderPolar); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
}
