package handlers

import (
	"net/http"

	"pollmarket/internal/auth"
	"pollmarket/internal/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	settlementService *services.SettlementService
	userService       *services.UserService
}

func NewAdminHandler(settlementService *services.SettlementService, userService *services.UserService) *AdminHandler {
	return &AdminHandler{
		settlementService: settlementService,
		userService:       userService,
	}
}

// ResolvePoll resolves a poll with a winning outcome and pays out winners
// POST /api/admin/polls/:id/resolve
func (h *AdminHandler) ResolvePoll(c *gin.Context) {
	adminID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	pollID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return
	}

	var req struct {
		WinningOutcomeID uint    `json:"winning_outcome_id" binding:"required"`
		EvidenceURL      *string `json:"evidence_url"`
		EvidenceText     *string `json:"evidence_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.settlementService.ResolvePoll(
		c.Request.Context(), adminID, pollID, req.WinningOutcomeID, req.EvidenceURL, req.EvidenceText)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CancelPoll cancels a poll and refunds every bet
// POST /api/admin/polls/:id/cancel
func (h *AdminHandler) CancelPoll(c *gin.Context) {
	adminID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	pollID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return
	}

	result, err := h.settlementService.CancelPoll(c.Request.Context(), adminID, pollID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MakeAdmin grants admin rights to a user
// POST /api/admin/users/:id/promote
func (h *AdminHandler) MakeAdmin(c *gin.Context) {
	adminID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	userID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.userService.MakeAdmin(c.Request.Context(), adminID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"promoted": userID})
}
