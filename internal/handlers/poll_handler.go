package handlers

import (
	"net/http"
	"strconv"

	"pollmarket/internal/auth"
	"pollmarket/internal/models"
	"pollmarket/internal/services"

	"github.com/gin-gonic/gin"
)

type PollHandler struct {
	pollService *services.PollService
}

func NewPollHandler(pollService *services.PollService) *PollHandler {
	return &PollHandler{pollService: pollService}
}

// CreatePoll creates a new poll
// POST /api/polls
func (h *PollHandler) CreatePoll(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req models.CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	poll, err := h.pollService.CreatePoll(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, poll)
}

// GetPoll retrieves a poll with outcome probabilities
// GET /api/polls/:id
func (h *PollHandler) GetPoll(c *gin.Context) {
	pollID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return
	}

	poll, err := h.pollService.GetPoll(c.Request.Context(), pollID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, poll)
}

// ListPolls retrieves polls, optionally filtered by status
// GET /api/polls
func (h *PollHandler) ListPolls(c *gin.Context) {
	limit := 20
	offset := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	var status *models.PollStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := models.PollStatus(statusStr)
		switch s {
		case models.PollStatusActive, models.PollStatusResolved, models.PollStatusCancelled:
			status = &s
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
	}

	polls, err := h.pollService.ListPolls(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"polls": polls,
		"total": len(polls),
	})
}

// GetUserPolls retrieves polls created by the authenticated user
// GET /api/polls/mine
func (h *PollHandler) GetUserPolls(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	polls, err := h.pollService.GetUserPolls(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"polls": polls,
		"total": len(polls),
	})
}

// GetProbabilityHistory retrieves the charting series for a poll
// GET /api/polls/:id/history
func (h *PollHandler) GetProbabilityHistory(c *gin.Context) {
	pollID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poll id"})
		return
	}

	history, err := h.pollService.GetProbabilityHistory(c.Request.Context(), pollID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	return uint(v), err
}

func parseUintQuery(value string) (uint, error) {
	v, err := strconv.ParseUint(value, 10, 64)
	return uint(v), err
}
