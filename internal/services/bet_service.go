package services

import (
	"context"
	"fmt"
	"time"

	"pollmarket/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BetService validates and records wagers against the shared market state
type BetService struct {
	db *gorm.DB
}

// NewBetService creates a new bet service
func NewBetService(db *gorm.DB) *BetService {
	return &BetService{db: db}
}

// PlaceBet places a wager on an outcome. All preconditions are checked before
// any mutation; the debit, liquidity update, bet insert and probability
// snapshot append happen in one transaction, so concurrent placements never
// observe partial effects.
func (s *BetService) PlaceBet(ctx context.Context, userID uint, req *models.PlaceBetRequest) (*models.Bet, error) {
	var bet *models.Bet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		if req.PointsWagered <= 0 {
			return ErrInvalidAmount
		}

		wagered := decimal.NewFromInt(req.PointsWagered)
		if user.PointBalance.LessThan(wagered) {
			return ErrInsufficientFunds
		}

		var poll models.Poll
		if err := tx.First(&poll, req.PollID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrPollNotFound
			}
			return fmt.Errorf("failed to load poll: %w", err)
		}
		if poll.Status != models.PollStatusActive {
			return ErrPollNotActive
		}

		var outcome models.Outcome
		if err := tx.First(&outcome, req.OutcomeID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrOutcomeNotFound
			}
			return fmt.Errorf("failed to load outcome: %w", err)
		}
		if outcome.PollID != poll.ID {
			return ErrOutcomeMismatch
		}

		// Single-choice polls: betting again on the same outcome accumulates,
		// a bet on any other outcome of the poll is rejected.
		if !poll.AllowMultipleVotes {
			var conflicting int64
			if err := tx.Model(&models.Bet{}).
				Where("user_id = ? AND poll_id = ? AND outcome_id <> ?", userID, poll.ID, outcome.ID).
				Count(&conflicting).Error; err != nil {
				return fmt.Errorf("failed to check existing bets: %w", err)
			}
			if conflicting > 0 {
				return ErrSingleChoiceViolation
			}
		}

		shares := SharesReceived(req.PointsWagered, outcome.TotalShares)

		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("point_balance", gorm.Expr("point_balance - ?", wagered)).Error; err != nil {
			return fmt.Errorf("failed to debit balance: %w", err)
		}

		if err := tx.Model(&models.Outcome{}).
			Where("id = ?", outcome.ID).
			Update("total_shares", gorm.Expr("total_shares + ?", shares)).Error; err != nil {
			return fmt.Errorf("failed to update liquidity: %w", err)
		}

		bet = &models.Bet{
			UserID:         userID,
			PollID:         poll.ID,
			OutcomeID:      outcome.ID,
			PointsWagered:  req.PointsWagered,
			SharesReceived: shares,
			Settled:        false,
		}
		if err := tx.Create(bet).Error; err != nil {
			return fmt.Errorf("failed to record bet: %w", err)
		}

		return s.appendProbabilitySnapshots(tx, poll.ID)
	})
	if err != nil {
		return nil, err
	}

	return bet, nil
}

// appendProbabilitySnapshots recomputes the volume-share probability of every
// outcome of the poll and appends one history row per outcome, all stamped
// with the same timestamp. Charting needs the complete vector per bet, not
// just the changed outcome.
func (s *BetService) appendProbabilitySnapshots(tx *gorm.DB, pollID uint) error {
	var bets []models.Bet
	if err := tx.Where("poll_id = ?", pollID).Find(&bets).Error; err != nil {
		return fmt.Errorf("failed to load poll bets: %w", err)
	}

	var totalVolume int64
	volumeByOutcome := make(map[uint]int64)
	for _, b := range bets {
		totalVolume += b.PointsWagered
		volumeByOutcome[b.OutcomeID] += b.PointsWagered
	}

	var outcomes []models.Outcome
	if err := tx.Where("poll_id = ?", pollID).Order("display_order ASC").Find(&outcomes).Error; err != nil {
		return fmt.Errorf("failed to load outcomes: %w", err)
	}

	now := time.Now()
	rows := make([]models.ProbabilityHistory, 0, len(outcomes))
	for _, o := range outcomes {
		probability := 0.0
		if totalVolume > 0 {
			probability = float64(volumeByOutcome[o.ID]) / float64(totalVolume) * 100
		}
		rows = append(rows, models.ProbabilityHistory{
			PollID:      pollID,
			OutcomeID:   o.ID,
			Probability: probability,
			Timestamp:   now,
		})
	}

	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to append probability history: %w", err)
	}
	return nil
}

// GetUserBets retrieves a user's bets, optionally narrowed to one poll
func (s *BetService) GetUserBets(ctx context.Context, userID uint, pollID *uint) ([]models.Bet, error) {
	query := s.db.WithContext(ctx).
		Preload("Poll").
		Preload("Outcome").
		Where("user_id = ?", userID)
	if pollID != nil {
		query = query.Where("poll_id = ?", *pollID)
	}

	var bets []models.Bet
	if err := query.Order("created_at DESC").Find(&bets).Error; err != nil {
		return nil, fmt.Errorf("failed to get user bets: %w", err)
	}
	return bets, nil
}

// GetPollBets retrieves all bets on a poll with bettor and outcome details
func (s *BetService) GetPollBets(ctx context.Context, pollID uint) ([]models.Bet, error) {
	var bets []models.Bet
	if err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Outcome").
		Where("poll_id = ?", pollID).
		Order("created_at DESC").
		Find(&bets).Error; err != nil {
		return nil, fmt.Errorf("failed to get poll bets: %w", err)
	}
	return bets, nil
}

// GetOutcomeBets retrieves all bets on one outcome
func (s *BetService) GetOutcomeBets(ctx context.Context, outcomeID uint) ([]models.Bet, error) {
	var bets []models.Bet
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("outcome_id = ?", outcomeID).
		Order("created_at DESC").
		Find(&bets).Error; err != nil {
		return nil, fmt.Errorf("failed to get outcome bets: %w", err)
	}
	return bets, nil
}
