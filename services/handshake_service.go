package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pilab-dev/fitlink/domain"
	"github.com/pilab-dev/fitlink/internal/audit"
	"github.com/pilab-dev/fitlink/internal/metrics"
	"github.com/pilab-dev/fitlink/internal/provider"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultStateTTL is how long a user has to finish the provider consent screen.
	DefaultStateTTL = 10 * time.Minute

	stateEntropyBytes = 32
)

// HandshakeService runs the OAuth authorization-code handshake: it issues
// single-use state tokens, verifies them on callback, exchanges the code and
// hands the credential to the ConnectionService.
type HandshakeService struct {
	registry    *provider.Registry
	ledger      domain.StateLedger
	connections *ConnectionService
	stateTTL    time.Duration
	now         func() time.Time
}

// HandshakeOption customizes a HandshakeService.
type HandshakeOption func(*HandshakeService)

// WithStateTTL overrides DefaultStateTTL.
func WithStateTTL(ttl time.Duration) HandshakeOption {
	return func(s *HandshakeService) {
		s.stateTTL = ttl
	}
}

// WithHandshakeClock overrides the time source.
func WithHandshakeClock(now func() time.Time) HandshakeOption {
	return func(s *HandshakeService) {
		s.now = now
	}
}

// NewHandshakeService creates a new HandshakeService.
func NewHandshakeService(registry *provider.Registry, ledger domain.StateLedger, connections *ConnectionService, opts ...HandshakeOption) *HandshakeService {
	s := &HandshakeService{
		registry:    registry,
		ledger:      ledger,
		connections: connections,
		stateTTL:    DefaultStateTTL,
		now:         utcNow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initiate issues a state for (userID, provider) and returns the provider
// authorization URL carrying it. Nothing is written to the ledger unless the
// provider is known, implemented and configured.
func (s *HandshakeService) Initiate(ctx context.Context, userID string, p domain.Provider) (authURL, state string, err error) {
	client, err := s.registry.Client(p)
	if err != nil {
		return "", "", err
	}

	state, err = generateState()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate state: %w", err)
	}

	now := s.now()
	err = s.ledger.Save(ctx, &domain.HandshakeState{
		ID:        uuid.NewString(),
		State:     state,
		UserID:    userID,
		Provider:  p,
		ExpiresAt: now.Add(s.stateTTL),
		CreatedAt: now,
	})
	if err != nil {
		return "", "", err
	}

	metrics.HandshakesInitiatedTotal.WithLabelValues(p.String()).Inc()
	log.Debug().Str("userID", userID).Str("provider", p.String()).Msg("OAuth handshake initiated")

	return client.AuthCodeURL(state), state, nil
}

// VerifyState consumes the state issued for provider and returns the user that
// started the handshake. The record is removed even when it turns out to be
// expired, so a state can never be verified twice.
func (s *HandshakeService) VerifyState(ctx context.Context, state string, p domain.Provider) (string, error) {
	if state == "" {
		return "", domain.ErrInvalidOrExpiredState
	}

	hs, err := s.ledger.Consume(ctx, state, p)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.ErrInvalidOrExpiredState
	}
	if err != nil {
		return "", err
	}
	if hs.Expired(s.now()) {
		log.Info().Str("provider", p.String()).Time("expiresAt", hs.ExpiresAt).Msg("Rejected expired OAuth state")
		return "", domain.ErrInvalidOrExpiredState
	}

	return hs.UserID, nil
}

// CompleteCallback finishes a handshake from the provider redirect. When
// providerHint is empty the provider is read from the pending state before it
// is consumed.
func (s *HandshakeService) CompleteCallback(ctx context.Context, code, state, providerHint string) (*domain.Connection, error) {
	p, err := s.resolveProvider(ctx, state, providerHint)
	if err != nil {
		return nil, err
	}

	conn, err := s.complete(ctx, code, state, p)
	metrics.HandshakesCompletedTotal.WithLabelValues(p.String(), outcomeLabel(err)).Inc()
	if err != nil {
		log.Warn().Err(err).Str("provider", p.String()).Msg("OAuth callback failed")
		return nil, err
	}

	audit.Log(audit.ActionConnect, conn.UserID, conn.ID, "provider="+p.String(), true, nil)
	return conn, nil
}

func (s *HandshakeService) complete(ctx context.Context, code, state string, p domain.Provider) (*domain.Connection, error) {
	userID, err := s.VerifyState(ctx, state, p)
	if err != nil {
		return nil, err
	}

	client, err := s.registry.Client(p)
	if err != nil {
		return nil, err
	}

	cred, err := client.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	return s.connections.Upsert(ctx, userID, p, cred)
}

func (s *HandshakeService) resolveProvider(ctx context.Context, state, hint string) (domain.Provider, error) {
	if hint != "" {
		return domain.ParseProvider(hint)
	}
	if state == "" {
		return "", domain.ErrInvalidOrExpiredState
	}

	hs, err := s.ledger.Lookup(ctx, state)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.ErrInvalidOrExpiredState
	}
	if err != nil {
		return "", err
	}
	return hs.Provider, nil
}

func generateState() (string, error) {
	b := make([]byte, stateEntropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidOrExpiredState):
		return "invalid_state"
	case errors.Is(err, domain.ErrTokenExchangeFailed):
		return "exchange_failed"
	case errors.Is(err, domain.ErrNotImplemented):
		return "not_implemented"
	default:
		return "error"
	}
}
