package jobs

import (
	"context"
	"log"
	"time"

	"pollmarket/internal/services"
)

// LinkTokenSweeper periodically deletes used and expired link tokens
type LinkTokenSweeper struct {
	userService *services.UserService
	interval    time.Duration
	stopChan    chan struct{}
}

// NewLinkTokenSweeper creates a new link token sweeper job
func NewLinkTokenSweeper(userService *services.UserService, interval time.Duration) *LinkTokenSweeper {
	return &LinkTokenSweeper{
		userService: userService,
		interval:    interval,
		stopChan:    make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called. Blocks; run in a goroutine.
func (j *LinkTokenSweeper) Start() {
	log.Printf("[LinkTokenSweeper] Starting link token sweep job (interval: %v)", j.interval)

	j.sweep()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stopChan:
			log.Println("[LinkTokenSweeper] Stopping link token sweep job")
			return
		}
	}
}

// Stop stops the sweep loop
func (j *LinkTokenSweeper) Stop() {
	close(j.stopChan)
}

func (j *LinkTokenSweeper) sweep() {
	removed, err := j.userService.SweepExpiredLinkTokens(context.Background())
	if err != nil {
		log.Printf("[LinkTokenSweeper] Sweep error: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("[LinkTokenSweeper] Swept %d expired link tokens", removed)
	}
}
