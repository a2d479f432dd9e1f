package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/errors"
	"github.com/malvarez-dev/tienda-backend/pkg/util"
)

// Context keys for user information
const (
	UserIDKey       = "user_id"
	UserEmailKey    = "user_email"
	TokenJTIKey     = "token_jti"
	TokenExpiresKey = "token_expires_at"
)

// RevocationChecker reports whether a token ID has been blocklisted.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthMiddleware struct {
	jwtSecret string
	revoker   RevocationChecker
}

func NewAuthMiddleware(jwtSecret string, revoker RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		revoker:   revoker,
	}
}

func extractBearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// validate checks signature, expiry, token type and the revocation list.
// It writes the error response itself and reports success via the bool.
func (m *AuthMiddleware) validate(c *gin.Context, token string) (*util.Claims, bool) {
	log := GetLoggerFromContext(c)

	claims, err := util.ValidateToken(token, m.jwtSecret)
	if err != nil {
		log.Warn("Token validation failed", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		if err == util.ErrExpiredToken {
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Token has expired")
		} else {
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid token")
		}
		return nil, false
	}

	if claims.Type != util.TokenTypeAccess {
		log.Warn("Refresh token used on protected endpoint", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid token")
		return nil, false
	}

	if m.revoker != nil {
		revoked, err := m.revoker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Error("Failed to check token revocation", err, map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.InternalError(c, "")
			return nil, false
		}
		if revoked {
			log.Warn("Revoked token rejected", map[string]interface{}{
				"path": c.Request.URL.Path,
				"jti":  claims.ID,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "Token has been revoked")
			return nil, false
		}
	}

	return claims, true
}

func setUserContext(c *gin.Context, claims *util.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(TokenJTIKey, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(TokenExpiresKey, claims.ExpiresAt.Time)
	}
}

// Authenticate validates the JWT token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := extractBearerToken(c)
		if !ok {
			log.Warn("Missing or malformed authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		claims, ok := m.validate(c, token)
		if !ok {
			c.Abort()
			return
		}

		setUserContext(c, claims)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.UserID,
			"email":   claims.Email,
		})

		c.Next()
	}
}

// OptionalAuthenticate validates the JWT token if present.
// - Missing or malformed header: continues as guest.
// - Expired or invalid token: continues as guest.
// - Valid but revoked token: rejected, matching required authentication.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := extractBearerToken(c)
		if !ok {
			log.Debug("No authorization header - continuing as guest", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.Next()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil || claims.Type != util.TokenTypeAccess {
			log.Debug("Token validation failed - continuing as guest", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.Next()
			return
		}

		if m.revoker != nil {
			revoked, err := m.revoker.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				log.Error("Failed to check token revocation", err, map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.InternalError(c, "")
				c.Abort()
				return
			}
			if revoked {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "Token has been revoked")
				c.Abort()
				return
			}
		}

		setUserContext(c, claims)

		log.Debug("User authenticated successfully (optional)", map[string]interface{}{
			"user_id": claims.UserID,
			"email":   claims.Email,
		})

		c.Next()
	}
}

// GetUserID extracts the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetUserEmail extracts the user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	return email.(string), true
}

// GetTokenJTI extracts the token ID from context
func GetTokenJTI(c *gin.Context) (string, bool) {
	jti, exists := c.Get(TokenJTIKey)
	if !exists {
		return "", false
	}
	return jti.(string), true
}

// GetTokenExpiry extracts the token expiry from context
func GetTokenExpiry(c *gin.Context) (time.Time, bool) {
	expiry, exists := c.Get(TokenExpiresKey)
	if !exists {
		return time.Time{}, false
	}
	t, ok := expiry.(time.Time)
	return t, ok
}
