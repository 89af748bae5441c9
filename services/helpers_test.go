package services

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pilab-dev/fitlink/cache"
	"github.com/pilab-dev/fitlink/domain"
	"github.com/pilab-dev/fitlink/internal/provider"
	"github.com/pilab-dev/fitlink/memory"
)

// fakeClock is a settable time source shared by the services under test.
type fakeClock struct {
	now atomic.Pointer[time.Time]
}

func newFakeClock(t time.Time) *fakeClock {
	c := &fakeClock{}
	c.Set(t)
	return c
}

func (c *fakeClock) Now() time.Time {
	return *c.now.Load()
}

func (c *fakeClock) Set(t time.Time) {
	c.now.Store(&t)
}

func (c *fakeClock) Advance(d time.Duration) {
	c.Set(c.Now().Add(d))
}

// stravaTokenServer answers every code exchange with a fresh access token for
// the same athlete.
func stravaTokenServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if r.FormValue("code") == "bad-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Authorization Error"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"token_type": "Bearer",
			"expires_at": 1893456000,
			"refresh_token": "refresh",
			"access_token": "access-` + string(rune('a'+n%26)) + `",
			"athlete": {"id": 777, "username": "rider", "email": "rider@example.com"}
		}`))
	}))
	t.Cleanup(server.Close)

	return server, &calls
}

type handshakeFixture struct {
	clock       *fakeClock
	ledger      *cache.MemoryStateLedger
	connRepo    *memory.ConnectionRepository
	connections *ConnectionService
	handshakes  *HandshakeService
	exchanges   *atomic.Int32
}

func newHandshakeFixture(t *testing.T) *handshakeFixture {
	t.Helper()

	server, calls := stravaTokenServer(t)
	registry := provider.NewRegistry("http://localhost/api/oauth/callback", map[domain.Provider]provider.Config{
		domain.ProviderStrava: {ClientID: "strava-id", ClientSecret: "strava-secret", TokenURL: server.URL},
		domain.ProviderGarmin: {ClientID: "garmin-id", ClientSecret: "garmin-secret"},
	})

	clock := newFakeClock(time.Now().UTC())
	ledger := cache.NewMemoryStateLedger()
	t.Cleanup(func() { _ = ledger.Close() })

	connRepo := memory.NewConnectionRepository()
	connections := NewConnectionService(connRepo, WithConnectionClock(clock.Now))

	return &handshakeFixture{
		clock:       clock,
		ledger:      ledger,
		connRepo:    connRepo,
		connections: connections,
		handshakes:  NewHandshakeService(registry, ledger, connections, WithHandshakeClock(clock.Now)),
		exchanges:   calls,
	}
}

func base64RawURLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
