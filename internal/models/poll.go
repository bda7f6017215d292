package models

import (
	"time"
)

// Poll status constants
type PollStatus string

const (
	PollStatusActive    PollStatus = "active"
	PollStatusResolved  PollStatus = "resolved"
	PollStatusCancelled PollStatus = "cancelled"
)

// Poll represents a prediction poll with 2-10 outcomes
type Poll struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Title              string     `gorm:"size:500;not null" json:"title"`
	Description        string     `gorm:"type:text" json:"description,omitempty"`
	CreatorID          uint       `gorm:"not null;index" json:"creator_id"`
	Creator            *User      `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Status             PollStatus `gorm:"size:20;not null;default:active;index" json:"status"`
	AllowMultipleVotes bool       `gorm:"not null;default:false" json:"allow_multiple_votes"`
	WinningOutcomeID   *uint      `gorm:"index" json:"winning_outcome_id,omitempty"`
	EvidenceURL        *string    `gorm:"size:2048" json:"evidence_url,omitempty"`
	EvidenceText       *string    `gorm:"type:text" json:"evidence_text,omitempty"`
	Outcomes           []Outcome  `gorm:"foreignKey:PollID" json:"outcomes,omitempty"`
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
}

// TableName specifies the table name for Poll model
func (Poll) TableName() string {
	return "polls"
}

// Outcome is one possible resolution of a poll. TotalShares is the AMM
// liquidity state; it only ever grows (there is no sell or cash-out).
type Outcome struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	PollID      uint    `gorm:"not null;index:idx_outcomes_poll;index:idx_outcomes_poll_order,priority:1" json:"poll_id"`
	Title       string  `gorm:"size:255;not null" json:"title"`
	TotalShares float64 `gorm:"not null" json:"total_shares"`
	Order       int     `gorm:"column:display_order;not null;index:idx_outcomes_poll_order,priority:2" json:"order"`
}

// TableName specifies the table name for Outcome model
func (Outcome) TableName() string {
	return "outcomes"
}

// ProbabilityHistory is an append-only probability snapshot, one row per
// outcome per placed bet. Charting data, never authoritative state.
type ProbabilityHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PollID      uint      `gorm:"not null;index:idx_prob_history_poll_ts,priority:1" json:"poll_id"`
	OutcomeID   uint      `gorm:"not null;index" json:"outcome_id"`
	Probability float64   `gorm:"not null" json:"probability"`
	Timestamp   time.Time `gorm:"not null;index:idx_prob_history_poll_ts,priority:2" json:"timestamp"`
}

// TableName specifies the table name for ProbabilityHistory model
func (ProbabilityHistory) TableName() string {
	return "probability_history"
}

// ---- Request/Response DTOs ----

// CreatePollRequest is the request body for creating a poll
type CreatePollRequest struct {
	Title              string   `json:"title" binding:"required"`
	Description        string   `json:"description"`
	Outcomes           []string `json:"outcomes" binding:"required"`
	AllowMultipleVotes bool     `json:"allow_multiple_votes"`
}

// OutcomeResponse is an outcome enriched with volume-derived stats
type OutcomeResponse struct {
	ID          uint    `json:"id"`
	PollID      uint    `json:"poll_id"`
	Title       string  `json:"title"`
	TotalShares float64 `json:"total_shares"`
	Order       int     `json:"order"`
	Probability float64 `json:"probability"`
	Volume      int64   `json:"volume"`
	BetCount    int     `json:"bet_count"`
}

// PollResponse is a poll enriched with outcome probabilities and volume
type PollResponse struct {
	Poll
	OutcomeDetails []OutcomeResponse `json:"outcome_details"`
	TotalVolume    int64             `json:"total_volume"`
	TotalBets      int               `json:"total_bets"`
}

// ProbabilityPoint is the probability vector of a poll at one timestamp,
// keyed by outcome title.
type ProbabilityPoint struct {
	Timestamp     time.Time          `json:"timestamp"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// ProbabilityHistoryResponse is the time-ordered charting series for a poll
type ProbabilityHistoryResponse struct {
	History  []ProbabilityPoint `json:"history"`
	Outcomes []string           `json:"outcomes"`
}
