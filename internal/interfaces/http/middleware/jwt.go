package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/distribo/backend/internal/infrastructure/auth"
	"github.com/distribo/backend/internal/infrastructure/logger"
	"github.com/distribo/backend/internal/interfaces/http/dto"
)

// Context keys set by the auth middleware
const (
	ClaimsKey  = "auth_claims"
	OrgIDKey   = "auth_org_id"
	ActorIDKey = "auth_actor_id"

	authHeaderKey = "Authorization"
	bearerPrefix  = "Bearer "
)

// AuthConfig configures the JWT authentication middleware
type AuthConfig struct {
	Tokens *auth.TokenService
	// Blacklist is optional; when set, revoked tokens are rejected
	Blacklist auth.TokenBlacklist
	// SkipPaths bypass authentication (health probes and the like)
	SkipPaths []string
}

// Auth returns middleware that validates the bearer token, rejects revoked
// tokens, and places the org and actor identity into the request context.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Missing or malformed authorization header")
			return
		}

		claims, err := cfg.Tokens.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, authErrorMessage(err))
			return
		}

		if cfg.Blacklist != nil {
			revoked, err := cfg.Blacklist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logger.FromContext(c.Request.Context()).Warn("token revocation check failed")
			} else if revoked {
				abortUnauthorized(c, "Token has been revoked")
				return
			}
		}

		orgID, err := claims.GetOrgUUID()
		if err != nil {
			abortUnauthorized(c, "Invalid organization claim")
			return
		}
		actorID, err := claims.GetActorUUID()
		if err != nil {
			abortUnauthorized(c, "Invalid actor claim")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(OrgIDKey, orgID)
		c.Set(ActorIDKey, actorID)

		ctx := c.Request.Context()
		ctx, _ = logger.WithOrgID(ctx, logger.FromContext(ctx), orgID.String())
		ctx, _ = logger.WithActorID(ctx, logger.FromContext(ctx), actorID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// OrgIDFromContext returns the authenticated organization id
func OrgIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(OrgIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// ActorIDFromContext returns the authenticated actor id
func ActorIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ActorIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// ClaimsFromContext returns the full token claims
func ClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// RequireRole returns middleware that rejects requests whose token does not
// carry the given role. Must run after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}
		if !claims.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Insufficient permissions"))
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(authHeaderKey)
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimPrefix(header, bearerPrefix)
	return token, token != ""
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		return "Token is not yet valid"
	default:
		return "Invalid token"
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}
