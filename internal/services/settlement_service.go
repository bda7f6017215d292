package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"pollmarket/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementService performs the two terminal poll operations: resolution
// with proportional payout, and cancellation with full refund. Each poll
// undergoes exactly one of them, exactly once; the status == active check
// inside the transaction is the single-use gate.
type SettlementService struct {
	db *gorm.DB
}

// NewSettlementService creates a new settlement service
func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{db: db}
}

// ResolvePoll marks the winning outcome and redistributes the entire wagered
// pool to winning bets, proportional to each bet's share of the winning
// wager. Losing bets settle with zero payout. If nobody bet on the winning
// outcome the pool is burned: every bet settles at zero and no balance moves.
func (s *SettlementService) ResolvePoll(
	ctx context.Context,
	adminID uint,
	pollID uint,
	winningOutcomeID uint,
	evidenceURL, evidenceText *string,
) (*models.ResolutionResult, error) {
	result := &models.ResolutionResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireAdmin(tx, adminID); err != nil {
			return err
		}

		var poll models.Poll
		if err := tx.First(&poll, pollID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrPollNotFound
			}
			return fmt.Errorf("failed to load poll: %w", err)
		}
		if poll.Status != models.PollStatusActive {
			return ErrPollNotActive
		}

		var winning models.Outcome
		if err := tx.First(&winning, winningOutcomeID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrOutcomeNotFound
			}
			return fmt.Errorf("failed to load outcome: %w", err)
		}
		if winning.PollID != poll.ID {
			return ErrOutcomeMismatch
		}

		now := time.Now()
		if err := tx.Model(&poll).Updates(map[string]interface{}{
			"status":             models.PollStatusResolved,
			"winning_outcome_id": winningOutcomeID,
			"evidence_url":       evidenceURL,
			"evidence_text":      evidenceText,
			"resolved_at":        now,
		}).Error; err != nil {
			return fmt.Errorf("failed to update poll: %w", err)
		}

		var bets []models.Bet
		if err := tx.Where("poll_id = ?", pollID).Find(&bets).Error; err != nil {
			return fmt.Errorf("failed to load bets: %w", err)
		}

		var totalPool, totalWinningWager int64
		for _, bet := range bets {
			totalPool += bet.PointsWagered
			if bet.OutcomeID == winningOutcomeID {
				totalWinningWager += bet.PointsWagered
			}
		}
		result.TotalPool = totalPool

		pool := decimal.NewFromInt(totalPool)
		winningWager := decimal.NewFromInt(totalWinningWager)

		for _, bet := range bets {
			payout := decimal.Zero
			if bet.OutcomeID == winningOutcomeID && totalWinningWager > 0 {
				// payout = totalPool * (wager / totalWinningWager)
				payout = pool.Mul(decimal.NewFromInt(bet.PointsWagered)).Div(winningWager)
				result.WinnerCount++
			}

			settled, err := settleBet(tx, bet.ID, payout)
			if err != nil {
				return err
			}
			if settled && payout.IsPositive() {
				if err := creditBalance(tx, bet.UserID, payout); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Poll %d resolved: outcome %d wins, pool %d distributed to %d bets",
		pollID, winningOutcomeID, result.TotalPool, result.WinnerCount)

	return result, nil
}

// CancelPoll voids a poll and refunds every bet its exact wager, regardless
// of outcome. No proportional math applies.
func (s *SettlementService) CancelPoll(ctx context.Context, adminID uint, pollID uint) (*models.CancellationResult, error) {
	result := &models.CancellationResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireAdmin(tx, adminID); err != nil {
			return err
		}

		var poll models.Poll
		if err := tx.First(&poll, pollID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrPollNotFound
			}
			return fmt.Errorf("failed to load poll: %w", err)
		}
		if poll.Status != models.PollStatusActive {
			return ErrPollNotActive
		}

		now := time.Now()
		if err := tx.Model(&poll).Updates(map[string]interface{}{
			"status":      models.PollStatusCancelled,
			"resolved_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to update poll: %w", err)
		}

		var bets []models.Bet
		if err := tx.Where("poll_id = ?", pollID).Find(&bets).Error; err != nil {
			return fmt.Errorf("failed to load bets: %w", err)
		}

		for _, bet := range bets {
			refund := decimal.NewFromInt(bet.PointsWagered)
			settled, err := settleBet(tx, bet.ID, refund)
			if err != nil {
				return err
			}
			if !settled {
				continue
			}
			if err := creditBalance(tx, bet.UserID, refund); err != nil {
				return err
			}
			result.RefundedCount++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Poll %d cancelled: %d bets refunded", pollID, result.RefundedCount)

	return result, nil
}

// requireAdmin checks the admin capability flag on the caller's user record
func requireAdmin(tx *gorm.DB, userID uint) error {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsAdmin {
		return ErrNotAdmin
	}
	return nil
}

// settleBet flips the one-shot settled transition and records the payout.
// The settled filter makes the mutation idempotent; it reports false for a
// bet that was already settled, so a resumed settlement never credits twice.
func settleBet(tx *gorm.DB, betID uint, payout decimal.Decimal) (bool, error) {
	res := tx.Model(&models.Bet{}).
		Where("id = ? AND settled = ?", betID, false).
		Updates(map[string]interface{}{
			"settled": true,
			"payout":  payout,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to settle bet %d: %w", betID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// creditBalance adds points to a user balance inside the settlement
// transaction. Settlement only ever credits; balances cannot go negative here.
func creditBalance(tx *gorm.DB, userID uint, amount decimal.Decimal) error {
	if err := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("point_balance", gorm.Expr("point_balance + ?", amount)).Error; err != nil {
		return fmt.Errorf("failed to credit user %d: %w", userID, err)
	}
	return nil
}
