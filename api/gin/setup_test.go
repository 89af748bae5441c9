package fitlinkgin_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	fitlinkgin "github.com/pilab-dev/fitlink/api/gin"
	"github.com/pilab-dev/fitlink/cache"
	"github.com/pilab-dev/fitlink/domain"
	"github.com/pilab-dev/fitlink/internal/provider"
	"github.com/pilab-dev/fitlink/memory"
	"github.com/pilab-dev/fitlink/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type apiFixture struct {
	router      *gin.Engine
	connections *services.ConnectionService
	tracker     *services.SyncTracker
}

func newAPIFixture(t *testing.T, fetchers map[domain.Provider]services.ActivityFetcher) *apiFixture {
	t.Helper()

	gin.SetMode(gin.TestMode)
	log.Logger = zerolog.Nop()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.FormValue("code") == "bad-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Bad Request","errors":[{"field":"code","code":"invalid"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"token_type": "Bearer",
			"expires_at": 1893456000,
			"access_token": "secret-access-token",
			"refresh_token": "secret-refresh-token",
			"athlete": {"id": 99, "username": "climber", "email": "climber@example.com"}
		}`))
	}))
	t.Cleanup(tokenServer.Close)

	registry := provider.NewRegistry("http://localhost/api/oauth/callback", map[domain.Provider]provider.Config{
		domain.ProviderStrava: {ClientID: "strava-id", ClientSecret: "strava-secret", TokenURL: tokenServer.URL},
	})

	ledger := cache.NewMemoryStateLedger()
	t.Cleanup(func() { _ = ledger.Close() })

	connections := services.NewConnectionService(memory.NewConnectionRepository())
	tracker := services.NewSyncTracker(memory.NewSyncRunRepository(), nil)
	handshakes := services.NewHandshakeService(registry, ledger, connections)
	syncs := services.NewSyncService(connections, tracker, fetchers)

	router := gin.New()
	api := router.Group("/api")
	auth := fitlinkgin.UserAuthMiddleware(testSecret)
	fitlinkgin.NewOAuthAPI(handshakes, connections).RegisterRoutes(api, auth)
	fitlinkgin.NewProvidersAPI(connections, syncs, tracker, registry).RegisterRoutes(api, auth)

	return &apiFixture{router: router, connections: connections, tracker: tracker}
}

func bearer(t *testing.T, userID string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(testSecret)
	require.NoError(t, err)

	return "Bearer " + token
}

// do performs a request as userID; an empty userID sends no credentials.
func (f *apiFixture) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", bearer(t, userID))
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// connect runs a full handshake for userID against the fake Strava endpoint
// and returns the new connection id.
func (f *apiFixture) connect(t *testing.T, userID string) string {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/oauth/init", userID, map[string]string{"provider": "strava"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	state := decode(t, rec)["state"].(string)

	rec = f.do(t, http.MethodGet, "/api/oauth/callback?code=ok&state="+state, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	return decode(t, rec)["connection"].(map[string]any)["id"].(string)
}

func httpWithHeader(t *testing.T, f *apiFixture, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", authorization)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}
