package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"pollmarket/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// linkTokenTTL bounds how long a platform link token stays redeemable.
const linkTokenTTL = 10 * time.Minute

// UserService handles user records, balances and platform account linking
type UserService struct {
	db             *gorm.DB
	initialBalance decimal.Decimal
}

// NewUserService creates a new user service. initialBalance is the point
// grant for newly created users.
func NewUserService(db *gorm.DB, initialBalance decimal.Decimal) *UserService {
	return &UserService{db: db, initialBalance: initialBalance}
}

// CreateOrGetUser returns the user for an auth identity, creating it with
// the initial point grant on first sight.
func (s *UserService) CreateOrGetUser(ctx context.Context, authID, email, name string) (*models.User, error) {
	if authID == "" {
		return nil, ErrNotAuthenticated
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("auth_id = ?", authID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user = models.User{
		Name:         name,
		Email:        email,
		AuthID:       authID,
		PointBalance: s.initialBalance,
		IsAdmin:      false,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("Created user %d (%s) with starting balance %s", user.ID, user.Email, s.initialBalance)
	return &user, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserByDiscordID retrieves the user linked to a Discord account
func (s *UserService) GetUserByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("discord_id = ?", discordID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserStats aggregates a user's betting activity from their bet history
func (s *UserService) GetUserStats(ctx context.Context, userID uint) (*models.UserStats, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var bets []models.Bet
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&bets).Error; err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}

	stats := &models.UserStats{
		PointBalance: user.PointBalance,
		TotalBets:    len(bets),
		TotalPayout:  decimal.Zero,
	}
	for _, bet := range bets {
		stats.TotalWagered += bet.PointsWagered
		if bet.Settled {
			stats.SettledBets++
			if bet.Payout != nil {
				stats.TotalPayout = stats.TotalPayout.Add(*bet.Payout)
			}
		} else {
			stats.ActiveBets++
		}
	}
	stats.NetProfit = stats.TotalPayout.Sub(decimal.NewFromInt(stats.TotalWagered))

	return stats, nil
}

// MakeAdmin grants the admin capability flag. Only an existing admin may
// grant it.
func (s *UserService) MakeAdmin(ctx context.Context, adminID, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireAdmin(tx, adminID); err != nil {
			return err
		}

		res := tx.Model(&models.User{}).Where("id = ?", userID).Update("is_admin", true)
		if res.Error != nil {
			return fmt.Errorf("failed to promote user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		log.Printf("User %d promoted to admin by %d", userID, adminID)
		return nil
	})
}

// CreateLinkToken issues a single-use token that a platform user (e.g. a
// Discord account) can redeem to attach their account to a web user.
func (s *UserService) CreateLinkToken(ctx context.Context, platform, platformUserID string, platformUserName *string) (*models.LinkToken, error) {
	token := &models.LinkToken{
		Token:            uuid.NewString(),
		Platform:         platform,
		PlatformUserID:   platformUserID,
		PlatformUserName: platformUserName,
		ExpiresAt:        time.Now().Add(linkTokenTTL),
		Used:             false,
	}
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		return nil, fmt.Errorf("failed to create link token: %w", err)
	}
	return token, nil
}

// RedeemLinkToken consumes a link token and attaches the platform identity
// to the given user. Expired or already-used tokens are rejected.
func (s *UserService) RedeemLinkToken(ctx context.Context, userID uint, tokenValue string) (*models.User, error) {
	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var token models.LinkToken
		if err := tx.Where("token = ?", tokenValue).First(&token).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrLinkTokenInvalid
			}
			return fmt.Errorf("failed to load link token: %w", err)
		}
		if token.Used || time.Now().After(token.ExpiresAt) {
			return ErrLinkTokenInvalid
		}

		var u models.User
		if err := tx.First(&u, userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		if token.Platform == "discord" {
			if err := tx.Model(&u).Update("discord_id", token.PlatformUserID).Error; err != nil {
				return fmt.Errorf("failed to link account: %w", err)
			}
			u.DiscordID = &token.PlatformUserID
		}

		if err := tx.Model(&token).Update("used", true).Error; err != nil {
			return fmt.Errorf("failed to consume link token: %w", err)
		}

		user = &u
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Link token redeemed for user %d", user.ID)
	return user, nil
}

// SweepExpiredLinkTokens deletes link tokens that are used or past expiry.
// Called periodically by the sweeper job.
func (s *UserService) SweepExpiredLinkTokens(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("used = ? OR expires_at < ?", true, time.Now()).
		Delete(&models.LinkToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to sweep link tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
