package handlers

import (
	"errors"
	"net/http"

	"pollmarket/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service sentinel errors to HTTP statuses. Unknown errors
// become 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotAdmin):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrPollNotFound),
		errors.Is(err, services.ErrOutcomeNotFound),
		errors.Is(err, services.ErrAPIKeyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPollNotActive),
		errors.Is(err, services.ErrSingleChoiceViolation):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInsufficientFunds),
		errors.Is(err, services.ErrOutcomeMismatch),
		errors.Is(err, services.ErrInvalidOutcomes),
		errors.Is(err, services.ErrLinkTokenInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
