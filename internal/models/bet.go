package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bet is a wager on a poll outcome. Created only through BetService.PlaceBet;
// the single settled=false -> true transition happens at resolution or
// cancellation, which also sets Payout exactly once.
type Bet struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	UserID         uint             `gorm:"not null;index;index:idx_bets_user_poll,priority:1" json:"user_id"`
	User           *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PollID         uint             `gorm:"not null;index;index:idx_bets_user_poll,priority:2" json:"poll_id"`
	Poll           *Poll            `gorm:"foreignKey:PollID" json:"poll,omitempty"`
	OutcomeID      uint             `gorm:"not null;index" json:"outcome_id"`
	Outcome        *Outcome         `gorm:"foreignKey:OutcomeID" json:"outcome,omitempty"`
	PointsWagered  int64            `gorm:"not null" json:"points_wagered"`
	SharesReceived float64          `gorm:"not null" json:"shares_received"`
	Settled        bool             `gorm:"not null;default:false;index" json:"settled"`
	Payout         *decimal.Decimal `gorm:"type:decimal(20,8)" json:"payout,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// TableName specifies the table name for Bet model
func (Bet) TableName() string {
	return "bets"
}

// ---- Request/Response DTOs ----

// PlaceBetRequest is the request body for placing a bet
type PlaceBetRequest struct {
	PollID        uint  `json:"poll_id" binding:"required"`
	OutcomeID     uint  `json:"outcome_id" binding:"required"`
	PointsWagered int64 `json:"points_wagered" binding:"required"`
}

// ResolutionResult reports what a poll resolution distributed
type ResolutionResult struct {
	TotalPool   int64 `json:"total_pool"`
	WinnerCount int   `json:"winner_count"`
}

// CancellationResult reports how many bets a cancellation refunded
type CancellationResult struct {
	RefundedCount int `json:"refunded_count"`
}
