package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prasertw/voltbook/internal/auth"
	"github.com/prasertw/voltbook/internal/service/users"
)

// UserHandler serves the whitelist management surface.
type UserHandler struct {
	svc    *users.Service
	logger *zap.Logger
}

// NewUserHandler constructs the HTTP adapter over user management.
func NewUserHandler(svc *users.Service, logger *zap.Logger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{svc: svc, logger: logger}
}

// Me serves GET /api/me: the caller's own identity and role.
func (h *UserHandler) Me(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":    actor.ID,
		"email": actor.Email,
		"name":  actor.Name,
		"role":  actor.Role,
	})
}

// List serves GET /api/users (admin only).
func (h *UserHandler) List(c *gin.Context) {
	accounts, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

type roleUpdateRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole serves PUT /api/users/:id/role (admin only).
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req roleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.UpdateRole(c.Request.Context(), c.Param("id"), req.Role); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
