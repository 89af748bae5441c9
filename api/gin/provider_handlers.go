package fitlinkgin

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pilab-dev/fitlink/domain"
	"github.com/pilab-dev/fitlink/internal/provider"
	"github.com/pilab-dev/fitlink/services"
)

// ProvidersAPI serves connection management, sync and the provider catalogue.
type ProvidersAPI struct {
	connections *services.ConnectionService
	syncs       *services.SyncService
	tracker     *services.SyncTracker
	registry    *provider.Registry
}

// NewProvidersAPI creates a new ProvidersAPI.
func NewProvidersAPI(
	connections *services.ConnectionService,
	syncs *services.SyncService,
	tracker *services.SyncTracker,
	registry *provider.Registry,
) *ProvidersAPI {
	return &ProvidersAPI{
		connections: connections,
		syncs:       syncs,
		tracker:     tracker,
		registry:    registry,
	}
}

// RegisterRoutes registers the provider routes under rg. Only the catalogue
// is public.
func (api *ProvidersAPI) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	providers := rg.Group("/providers")
	providers.GET("/available", api.AvailableHandler)

	authed := providers.Group("", auth)
	{
		authed.GET("/summary", api.SummaryHandler)
		authed.GET("/connections", api.ListHandler)
		authed.GET("/connections/provider/:provider", api.GetByProviderHandler)
		authed.GET("/connections/:id", api.GetHandler)
		authed.PATCH("/connections/:id", api.UpdateHandler)
		authed.DELETE("/connections/:id", api.DeleteHandler)
		authed.PATCH("/connections/:id/toggle", api.ToggleHandler)
		authed.POST("/connections/:id/sync", api.SyncHandler)
		authed.GET("/connections/:id/sync-history", api.SyncHistoryHandler)
		authed.GET("/connections/:id/sync-status", api.SyncStatusHandler)
	}
}

type messageResponse struct {
	Message string          `json:"message"`
	Sync    *domain.SyncRun `json:"sync,omitempty"`
}

type syncHistoryResponse struct {
	ConnectionID string            `json:"connection_id"`
	Provider     domain.Provider   `json:"provider"`
	TotalRecords int               `json:"total_records"`
	History      []*domain.SyncRun `json:"history"`
}

type syncStatusResponse struct {
	ConnectionID  string          `json:"connection_id"`
	Provider      domain.Provider `json:"provider"`
	IsActive      bool            `json:"is_active"`
	LastSyncAt    *time.Time      `json:"last_sync_at"`
	LastSyncError *string         `json:"last_sync_error"`
	LatestSync    *domain.SyncRun `json:"latest_sync"`
}

type catalogueResponse struct {
	TotalProviders       int                       `json:"total_providers"`
	ImplementedProviders int                       `json:"implemented_providers"`
	Providers            []provider.CatalogueEntry `json:"providers"`
}

func publicViews(conns []*domain.Connection) []domain.PublicConnection {
	views := make([]domain.PublicConnection, 0, len(conns))
	for _, conn := range conns {
		views = append(views, conn.Public())
	}
	return views
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// ListHandler lists the caller's connections.
func (api *ProvidersAPI) ListHandler(c *gin.Context) {
	activeOnly := false
	if raw := c.Query("active_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "invalid_request", "active_only must be a boolean")
			return
		}
		activeOnly = v
	}

	conns, err := api.connections.List(c.Request.Context(), currentUserID(c), activeOnly)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, publicViews(conns))
}

// GetHandler returns one of the caller's connections.
func (api *ProvidersAPI) GetHandler(c *gin.Context) {
	conn, ok := api.ownedConnection(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, conn.Public())
}

// GetByProviderHandler returns the caller's connection to a provider, or null.
func (api *ProvidersAPI) GetByProviderHandler(c *gin.Context) {
	p, err := domain.ParseProvider(c.Param("provider"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	conn, found, err := api.connections.GetByProvider(c.Request.Context(), currentUserID(c), p)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusOK, nil)
		return
	}

	c.JSON(http.StatusOK, conn.Public())
}

// UpdateHandler applies a partial update to a connection.
func (api *ProvidersAPI) UpdateHandler(c *gin.Context) {
	var patch domain.ConnectionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid_request", "Request body must be a JSON object")
		return
	}

	conn, err := api.connections.Update(c.Request.Context(), c.Param("id"), currentUserID(c), &patch)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, conn.Public())
}

// ToggleHandler enables or disables a connection.
func (api *ProvidersAPI) ToggleHandler(c *gin.Context) {
	active, err := strconv.ParseBool(c.Query("is_active"))
	if err != nil {
		badRequest(c, "invalid_request", "is_active query parameter must be a boolean")
		return
	}

	conn, err := api.connections.SetActive(c.Request.Context(), c.Param("id"), currentUserID(c), active)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, conn.Public())
}

// DeleteHandler hard-deletes a connection.
func (api *ProvidersAPI) DeleteHandler(c *gin.Context) {
	if err := api.connections.Delete(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Provider disconnected successfully"})
}

// SyncHandler runs a manual sync. A failed sync is already recorded as such
// when the 500 goes out.
func (api *ProvidersAPI) SyncHandler(c *gin.Context) {
	conn, ok := api.ownedConnection(c)
	if !ok {
		return
	}

	run, err := api.syncs.TriggerManual(c.Request.Context(), conn.ID, currentUserID(c))
	if err != nil {
		if run != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "sync_failed",
				"message": fmt.Sprintf("Sync failed: %s", derefString(run.ErrorMessage)),
			})
			return
		}
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Sync started successfully for %s", conn.Provider),
		Sync:    run,
	})
}

// SyncHistoryHandler lists the newest sync runs of a connection.
func (api *ProvidersAPI) SyncHistoryHandler(c *gin.Context) {
	limit := services.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, domain.ErrInvalidLimit)
			return
		}
		limit = v
	}

	conn, ok := api.ownedConnection(c)
	if !ok {
		return
	}

	history, err := api.tracker.History(c.Request.Context(), conn.ID, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, syncHistoryResponse{
		ConnectionID: conn.ID,
		Provider:     conn.Provider,
		TotalRecords: len(history),
		History:      history,
	})
}

// SyncStatusHandler reports the connection's sync state and latest run.
func (api *ProvidersAPI) SyncStatusHandler(c *gin.Context) {
	conn, ok := api.ownedConnection(c)
	if !ok {
		return
	}

	latest, _, err := api.tracker.Latest(c.Request.Context(), conn.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, syncStatusResponse{
		ConnectionID:  conn.ID,
		Provider:      conn.Provider,
		IsActive:      conn.IsActive,
		LastSyncAt:    conn.LastSyncAt,
		LastSyncError: conn.LastSyncError,
		LatestSync:    latest,
	})
}

// SummaryHandler returns the dashboard summary of the caller's connections.
func (api *ProvidersAPI) SummaryHandler(c *gin.Context) {
	summary, err := api.connections.Summary(c.Request.Context(), currentUserID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// AvailableHandler lists every supported provider.
func (api *ProvidersAPI) AvailableHandler(c *gin.Context) {
	entries := api.registry.Catalogue()

	implemented := 0
	for _, e := range entries {
		if e.Implemented {
			implemented++
		}
	}

	c.JSON(http.StatusOK, catalogueResponse{
		TotalProviders:       len(entries),
		ImplementedProviders: implemented,
		Providers:            entries,
	})
}

func (api *ProvidersAPI) ownedConnection(c *gin.Context) (*domain.Connection, bool) {
	conn, err := api.connections.Get(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		if isNotFound(err) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Connection not found",
			})
			return nil, false
		}
		abortWithError(c, err)
		return nil, false
	}
	return conn, true
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
