package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a user in the system
type User struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	Email        string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	AuthID       string          `gorm:"size:255;uniqueIndex;not null" json:"auth_id"`
	DiscordID    *string         `gorm:"size:64;uniqueIndex" json:"discord_id,omitempty"`
	PointBalance decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"point_balance"`
	IsAdmin      bool            `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// UserStats summarizes a user's betting activity
type UserStats struct {
	PointBalance decimal.Decimal `json:"point_balance"`
	TotalBets    int             `json:"total_bets"`
	ActiveBets   int             `json:"active_bets"`
	SettledBets  int             `json:"settled_bets"`
	TotalWagered int64           `json:"total_wagered"`
	TotalPayout  decimal.Decimal `json:"total_payout"`
	NetProfit    decimal.Decimal `json:"net_profit"`
}
