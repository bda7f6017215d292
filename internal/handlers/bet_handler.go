package handlers

import (
	"net/http"

	"pollmarket/internal/auth"
	"pollmarket/internal/models"
	"pollmarket/internal/services"

	"github.com/gin-gonic/gin"
)

type BetHandler struct {
	betService *services.BetService
}

func NewBetHandler(betService *services.BetService) *BetHandler {
	return &BetHandler{betService: betService}
}

// PlaceBet places a wager on a poll outcome
// POST /api/bets
func (h *BetHandler) PlaceBet(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req models.PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bet, err := h.betService.PlaceBet(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bet)
}

// GetMyBets retrieves the authenticated user's bets
// GET /api/bets/mine
func (h *BetHandler) GetMyBets(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var pollID *uint
	if pollStr := c.Query("poll_id"); pollStr != "" {
		id, err := parseUintQuery(pollStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll_id"})
			return
		}
		pollID = &id
	}

	bets, err := h.betService.GetUserBets(c.Request.Context(), userID, pollID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bets":  bets,
		"total": len(bets),
	})
}

// GetPollBets retrieves all bets on a poll
// GET /api/polls/:id/bets
func (h *BetHandler) GetPollBets(c *gin.Context) {
	pollID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return
	}

	bets, err := h.betService.GetPollBets(c.Request.Context(), pollID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bets":  bets,
		"total": len(bets),
	})
}

// GetOutcomeBets retrieves all bets on a single outcome
// GET /api/outcomes/:id/bets
func (h *BetHandler) GetOutcomeBets(c *gin.Context) {
	outcomeID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid outcome id"})
		return
	}

	bets, err := h.betService.GetOutcomeBets(c.Request.Context(), outcomeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bets":  bets,
		"total": len(bets),
	})
}
