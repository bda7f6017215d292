package handlers

import (
	"net/http"

	"pollmarket/internal/auth"
	"pollmarket/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Sync creates or fetches the user for an auth identity and returns a token
// POST /api/users/sync
func (h *UserHandler) Sync(c *gin.Context) {
	var req struct {
		AuthID string `json:"auth_id" binding:"required"`
		Email  string `json:"email" binding:"required,email"`
		Name   string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.CreateOrGetUser(c.Request.Context(), req.AuthID, req.Email, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

// Me returns the authenticated user
// GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Stats returns betting statistics for a user
// GET /api/users/:id/stats
func (h *UserHandler) Stats(c *gin.Context) {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	stats, err := h.userService.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// CreateLinkToken issues a link token for a platform account
// POST /api/users/link-token
func (h *UserHandler) CreateLinkToken(c *gin.Context) {
	var req struct {
		Platform         string  `json:"platform" binding:"required"`
		PlatformUserID   string  `json:"platform_user_id" binding:"required"`
		PlatformUserName *string `json:"platform_user_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.userService.CreateLinkToken(c.Request.Context(), req.Platform, req.PlatformUserID, req.PlatformUserName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, token)
}

// RedeemLinkToken attaches a platform account to the authenticated user
// POST /api/users/link
func (h *UserHandler) RedeemLinkToken(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.RedeemLinkToken(c.Request.Context(), userID, req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
