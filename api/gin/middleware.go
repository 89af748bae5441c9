package fitlinkgin

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pilab-dev/fitlink/domain"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// AuthUserIDKey is the gin context key holding the authenticated user id.
const AuthUserIDKey = "auth-user-id"

var ErrInvalidToken = errors.New("invalid JWT token")

// ParseUserID verifies an HS256 bearer token and returns its subject.
func ParseUserID(jwtToken string, secret []byte) (string, error) {
	token, err := jwt.Parse(jwtToken, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return sub, nil
}

// extractJWTFromHeader extracts the JWT from the Authorization header.
func extractJWTFromHeader(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):]), nil
	}
	return "", errors.New("invalid bearer token")
}

// UserAuthMiddleware authenticates the caller from a bearer JWT signed with
// secret. The token subject becomes the user id for the rest of the request.
func UserAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := otel.Tracer("").Start(c.Request.Context(), "UserAuthMiddleware")
		defer span.End()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_authorization_header",
				"message": "Missing Authorization header",
			})
			return
		}

		jwtToken, err := extractJWTFromHeader(authHeader)
		if err != nil {
			span.RecordError(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_authorization_header",
				"message": "Invalid Authorization header",
			})
			return
		}

		userID, err := ParseUserID(jwtToken, secret)
		if err != nil {
			log.Ctx(ctx).Debug().Err(err).Msg("Rejected bearer token")
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Invalid token",
			})
			return
		}

		c.Set(AuthUserIDKey, userID)
		c.Request = c.Request.WithContext(domain.WithUserID(ctx, userID))

		c.Next()
	}
}

// currentUserID returns the id set by UserAuthMiddleware.
func currentUserID(c *gin.Context) string {
	userID, _ := domain.UserIDFromContext(c.Request.Context())
	return userID
}
