package fitlinkgin

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pilab-dev/fitlink/domain"
	"github.com/pilab-dev/fitlink/services"
)

// OAuthAPI serves the provider handshake: init, callback and disconnect.
type OAuthAPI struct {
	handshakes  *services.HandshakeService
	connections *services.ConnectionService
}

// NewOAuthAPI creates a new OAuthAPI.
func NewOAuthAPI(handshakes *services.HandshakeService, connections *services.ConnectionService) *OAuthAPI {
	return &OAuthAPI{handshakes: handshakes, connections: connections}
}

// RegisterRoutes registers the handshake routes under rg. The callback is
// reached by the provider redirect and is authenticated by its state alone.
func (api *OAuthAPI) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	oauth := rg.Group("/oauth")
	{
		oauth.POST("/init", auth, api.InitHandler)
		oauth.GET("/callback", api.CallbackHandler)
		oauth.DELETE("/disconnect/:provider", auth, api.DisconnectHandler)
	}
}

type initRequest struct {
	Provider string `json:"provider" binding:"required"`
}

type initResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}

type callbackResponse struct {
	Success    bool                     `json:"success"`
	Message    string                   `json:"message"`
	Connection *domain.PublicConnection `json:"connection,omitempty"`
}

// InitHandler starts a handshake and returns the provider authorization URL.
func (api *OAuthAPI) InitHandler(c *gin.Context) {
	var req initRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid_request", "Request body must contain a provider")
		return
	}

	p, err := domain.ParseProvider(req.Provider)
	if err != nil {
		abortWithError(c, err)
		return
	}

	authURL, state, err := api.handshakes.Initiate(c.Request.Context(), currentUserID(c), p)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, initResponse{AuthorizationURL: authURL, State: state})
}

// CallbackHandler completes a handshake from the provider redirect.
func (api *OAuthAPI) CallbackHandler(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")

	// Providers report a denied consent screen through ?error=.
	if providerErr := c.Query("error"); providerErr != "" {
		badRequest(c, "access_denied", fmt.Sprintf("Provider returned an error: %s", providerErr))
		return
	}
	if code == "" || state == "" {
		badRequest(c, "invalid_request", "Both code and state are required")
		return
	}

	conn, err := api.handshakes.CompleteCallback(c.Request.Context(), code, state, c.Query("provider"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	view := conn.Public()
	c.JSON(http.StatusOK, callbackResponse{
		Success:    true,
		Message:    fmt.Sprintf("Successfully connected %s", conn.Provider),
		Connection: &view,
	})
}

// DisconnectHandler deletes the caller's connection to a provider.
func (api *OAuthAPI) DisconnectHandler(c *gin.Context) {
	p, err := domain.ParseProvider(c.Param("provider"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := api.connections.Disconnect(c.Request.Context(), currentUserID(c), p); err != nil {
		if isNotFound(err) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": fmt.Sprintf("No connection found for %s", p),
			})
			return
		}
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, callbackResponse{
		Success: true,
		Message: fmt.Sprintf("Successfully disconnected %s", p),
	})
}
