package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/distribo/backend/internal/infrastructure/auth"
	"github.com/distribo/backend/internal/infrastructure/logger"
	"github.com/distribo/backend/internal/interfaces/http/middleware"
)

// AuthHandler serves session introspection and logout. Token issuance is
// handled by the identity provider sharing the signing secret.
type AuthHandler struct {
	BaseHandler
	blacklist auth.TokenBlacklist
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(blacklist auth.TokenBlacklist) *AuthHandler {
	return &AuthHandler{blacklist: blacklist}
}

// RegisterRoutes registers auth routes on the given group
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.GET("/me", h.Me)
		authGroup.POST("/logout", h.Logout)
	}
}

// sessionResponse echoes the identity baked into the presented token
type sessionResponse struct {
	OrgID   string   `json:"org_id"`
	ActorID string   `json:"actor_id"`
	Name    string   `json:"name"`
	Roles   []string `json:"roles"`
}

// Me godoc
// @Summary Describe the current session
// @Tags auth
// @Produce json
// @Success 200 {object} dto.Response{data=sessionResponse}
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		h.BadRequest(c, "No session")
		return
	}
	h.Success(c, sessionResponse{
		OrgID:   claims.OrgID,
		ActorID: claims.ActorID,
		Name:    claims.Name,
		Roles:   claims.Roles,
	})
}

// Logout godoc
// @Summary Revoke the current token
// @Description The token is blacklisted for its remaining lifetime and will
// @Description be rejected on subsequent requests.
// @Tags auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		h.BadRequest(c, "No session")
		return
	}

	if h.blacklist != nil {
		if err := h.blacklist.Revoke(c.Request.Context(), claims.ID, claims.RemainingTTL()); err != nil {
			logger.FromContext(c.Request.Context()).Error("failed to revoke token")
			h.HandleError(c, err)
			return
		}
	}
	h.NoContent(c)
}
