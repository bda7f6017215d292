package handlers

import (
	"net/http"
	"sync"

	"pollmarket/internal/auth"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// userRateLimiter keeps one token bucket per authenticated user
type userRateLimiter struct {
	mu       sync.Mutex
	limiters map[uint]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newUserRateLimiter(rps float64, burst int) *userRateLimiter {
	return &userRateLimiter{
		limiters: make(map[uint]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (l *userRateLimiter) limiterFor(userID uint) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.limiters[userID] = limiter
	}
	return limiter
}

// RateLimitMiddleware throttles mutating requests per user. Runs after the
// auth middleware so the user id is already in the context.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiters := newUserRateLimiter(rps, burst)

	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			c.Next()
			return
		}

		if !limiters.limiterFor(userID).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
