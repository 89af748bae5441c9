package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/pilab-dev/fitlink/config"
	"github.com/pilab-dev/fitlink/domain"
	"github.com/pilab-dev/fitlink/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Storage:     config.StorageConfig{Driver: config.DriverMemory},
		StateLedger: config.StateLedgerConfig{Driver: config.DriverMemory},
		Auth:        config.AuthConfig{JWTSecret: "x"},
		OAuth: config.OAuthConfig{
			CallbackURL:     "http://localhost:8080/api/oauth/callback",
			StateTTL:        time.Minute,
			ExchangeTimeout: time.Second,
		},
		Providers: map[string]provider.Config{
			"strava": {ClientID: "id", ClientSecret: "secret"},
		},
	}
}

func TestNewApp_MemoryDrivers(t *testing.T) {
	ctx := context.Background()

	a, err := newApp(ctx, memoryConfig())
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Close(ctx)) }()

	assert.Nil(t, a.mongo)
	assert.Nil(t, a.redis)
	assert.NoError(t, a.HealthCheck(ctx))

	authURL, state, err := a.handshakes.Initiate(ctx, "u1", domain.ProviderStrava)
	require.NoError(t, err)
	assert.Contains(t, authURL, "client_id=id")

	userID, err := a.handshakes.VerifyState(ctx, state, domain.ProviderStrava)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	_, _, err = a.handshakes.Initiate(ctx, "u1", domain.ProviderPolar)
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["worker"])
	assert.True(t, names["enqueue-syncs"])
}
