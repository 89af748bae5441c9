package fitlinkgin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pilab-dev/fitlink/domain"
	"github.com/rs/zerolog/log"
)

// statusForError maps a domain error to its HTTP status and error code.
// Anything unknown is a server error.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusBadRequest, "unknown_provider"
	case errors.Is(err, domain.ErrInvalidOrExpiredState):
		return http.StatusBadRequest, "invalid_state"
	case errors.Is(err, domain.ErrNoFieldsToUpdate):
		return http.StatusBadRequest, "no_fields_to_update"
	case errors.Is(err, domain.ErrConnectionInactive):
		return http.StatusBadRequest, "connection_inactive"
	case errors.Is(err, domain.ErrInvalidLimit):
		return http.StatusBadRequest, "invalid_limit"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrConnectionConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrNotImplemented):
		return http.StatusNotImplemented, "not_implemented"
	case errors.Is(err, domain.ErrProviderNotConfigured):
		return http.StatusServiceUnavailable, "provider_not_configured"
	case errors.Is(err, domain.ErrTokenExchangeFailed):
		return http.StatusInternalServerError, "token_exchange_failed"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusInternalServerError, "store_unavailable"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}

// abortWithError renders err as {"error", "message"}. Server errors get a
// generic message so infrastructure details stay in the log.
func abortWithError(c *gin.Context, err error) {
	status, code := statusForError(err)

	message := err.Error()
	switch code {
	case "store_unavailable", "server_error":
		log.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		message = "Internal server error"
	case "token_exchange_failed":
		message = domain.ErrTokenExchangeFailed.Error()
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": code, "message": message})
}

func badRequest(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": code, "message": message})
}
