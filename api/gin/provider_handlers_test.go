package fitlinkgin_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/pilab-dev/fitlink/domain"
	"github.com/pilab-dev/fitlink/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionRoutes_OwnerScoped(t *testing.T) {
	f := newAPIFixture(t, nil)
	id := f.connect(t, "u1")

	rec := f.do(t, http.MethodGet, "/api/providers/connections/"+id, "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode(t, rec)
	assert.ElementsMatch(t, []string{"id", "provider", "provider_email", "is_active", "last_sync_at", "created_at"}, keys(view))

	for _, path := range []string{
		"/api/providers/connections/" + id,
		"/api/providers/connections/" + id + "/sync-status",
		"/api/providers/connections/" + id + "/sync-history",
	} {
		rec = f.do(t, http.MethodGet, path, "mallory", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec = f.do(t, http.MethodDelete, "/api/providers/connections/"+id, "mallory", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/providers/connections/"+id+"/sync", "mallory", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/providers/connections", "mallory", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestConnectionRoutes_ListAndByProvider(t *testing.T) {
	f := newAPIFixture(t, nil)
	id := f.connect(t, "u1")

	rec := f.do(t, http.MethodGet, "/api/providers/connections/provider/polar", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/providers/connections/provider/strava", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decode(t, rec)["id"])

	rec = f.do(t, http.MethodGet, "/api/providers/connections/provider/nike", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/providers/connections/"+id+"/toggle?is_active=false", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["is_active"])

	rec = f.do(t, http.MethodGet, "/api/providers/connections?active_only=true", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/providers/connections", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id)

	rec = f.do(t, http.MethodGet, "/api/providers/connections?active_only=maybe", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/providers/connections/"+id+"/toggle", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConnectionRoutes_PatchAndDelete(t *testing.T) {
	f := newAPIFixture(t, nil)
	id := f.connect(t, "u1")

	rec := f.do(t, http.MethodPatch, "/api/providers/connections/"+id, "u1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no_fields_to_update", decode(t, rec)["error"])

	rec = f.do(t, http.MethodPatch, "/api/providers/connections/"+id, "u1", map[string]any{"access_token": "rotated"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "rotated")

	conn, err := f.connections.Get(context.Background(), id, "u1")
	require.NoError(t, err)
	assert.Equal(t, "rotated", conn.AccessToken)

	rec = f.do(t, http.MethodDelete, "/api/providers/connections/"+id, "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Provider disconnected successfully", decode(t, rec)["message"])

	rec = f.do(t, http.MethodDelete, "/api/providers/connections/"+id, "u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSyncRoutes(t *testing.T) {
	f := newAPIFixture(t, map[domain.Provider]services.ActivityFetcher{
		domain.ProviderStrava: services.ActivityFetcherFunc(func(context.Context, *domain.Connection) (domain.SyncCounters, error) {
			return domain.SyncCounters{Fetched: 3, Created: 3}, nil
		}),
	})
	id := f.connect(t, "u1")

	rec := f.do(t, http.MethodGet, "/api/providers/connections/"+id+"/sync-status", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode(t, rec)
	assert.Nil(t, status["latest_sync"])
	assert.NotNil(t, status["last_sync_at"], "connecting stamps last_sync_at")

	rec = f.do(t, http.MethodPost, "/api/providers/connections/"+id+"/sync", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Sync started successfully for strava", decode(t, rec)["message"])

	rec = f.do(t, http.MethodGet, "/api/providers/connections/"+id+"/sync-status", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status = decode(t, rec)
	assert.NotNil(t, status["last_sync_at"])
	latest := status["latest_sync"].(map[string]any)
	assert.Equal(t, "success", latest["status"])
	assert.EqualValues(t, 3, latest["records_fetched"])

	rec = f.do(t, http.MethodGet, "/api/providers/connections/"+id+"/sync-history?limit=5", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode(t, rec)
	assert.Equal(t, id, history["connection_id"])
	assert.Equal(t, "strava", history["provider"])
	assert.EqualValues(t, 1, history["total_records"])

	for _, limit := range []string{"0", "101", "ten"} {
		rec = f.do(t, http.MethodGet, "/api/providers/connections/"+id+"/sync-history?limit="+limit, "u1", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
	}

	rec = f.do(t, http.MethodPatch, "/api/providers/connections/"+id+"/toggle?is_active=false", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/providers/connections/"+id+"/sync", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "connection_inactive", decode(t, rec)["error"])
}

func TestSyncRoutes_FailureIsRecorded(t *testing.T) {
	f := newAPIFixture(t, map[domain.Provider]services.ActivityFetcher{
		domain.ProviderStrava: services.ActivityFetcherFunc(func(context.Context, *domain.Connection) (domain.SyncCounters, error) {
			return domain.SyncCounters{}, errors.New("rate limited")
		}),
	})
	id := f.connect(t, "u1")

	rec := f.do(t, http.MethodPost, "/api/providers/connections/"+id+"/sync", "u1", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "sync_failed", body["error"])
	assert.Equal(t, "Sync failed: rate limited", body["message"])

	latest, found, err := f.tracker.Latest(context.Background(), id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.SyncStatusFailed, latest.Status)

	rec = f.do(t, http.MethodGet, "/api/providers/summary", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode(t, rec)
	assert.EqualValues(t, 1, summary["total_connections"])
	conns := summary["connections"].([]any)
	require.Len(t, conns, 1)
	assert.Equal(t, true, conns[0].(map[string]any)["has_error"])
}

func TestAvailableHandler_IsPublic(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/providers/available", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.EqualValues(t, 6, body["total_providers"])
	assert.EqualValues(t, 2, body["implemented_providers"])

	providers := body["providers"].([]any)
	first := providers[0].(map[string]any)
	assert.Equal(t, "strava", first["id"])
	assert.Equal(t, "OAuth 2.0", first["oauth_type"])
	assert.Equal(t, true, first["implemented"])
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
