package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"pollmarket/internal/models"

	"gorm.io/gorm"
)

const apiKeyPrefix = "pm_"
const apiKeyLength = 32

// APIKeyService issues and validates API keys for bot and third-party clients
type APIKeyService struct {
	db *gorm.DB
}

// NewAPIKeyService creates a new API key service
func NewAPIKeyService(db *gorm.DB) *APIKeyService {
	return &APIKeyService{db: db}
}

// CreateAPIKey issues a new key for a user
func (s *APIKeyService) CreateAPIKey(ctx context.Context, userID uint, name string) (*models.APIKey, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	key, err := generateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	apiKey := &models.APIKey{
		UserID: userID,
		Key:    key,
		Name:   name,
		Active: true,
	}
	if err := s.db.WithContext(ctx).Create(apiKey).Error; err != nil {
		return nil, fmt.Errorf("failed to save api key: %w", err)
	}
	return apiKey, nil
}

// ListUserAPIKeys retrieves all keys belonging to a user
func (s *APIKeyService) ListUserAPIKeys(ctx context.Context, userID uint) ([]models.APIKey, error) {
	var keys []models.APIKey
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&keys).Error; err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	return keys, nil
}

// RevokeAPIKey deactivates a key. Only the owning user may revoke it.
func (s *APIKeyService) RevokeAPIKey(ctx context.Context, userID, keyID uint) error {
	res := s.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("id = ? AND user_id = ?", keyID, userID).
		Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to revoke api key: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

// ValidateKey resolves an active API key to its user and touches LastUsedAt
func (s *APIKeyService) ValidateKey(ctx context.Context, key string) (*models.User, error) {
	var apiKey models.APIKey
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("key = ? AND active = ?", key, true).
		First(&apiKey).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("failed to look up api key: %w", err)
	}

	// last_used_at is bookkeeping; a failed touch must not reject a valid key.
	if err := s.db.WithContext(ctx).
		Model(&apiKey).
		Update("last_used_at", time.Now()).Error; err != nil {
		log.Printf("Failed to touch api key %d: %v", apiKey.ID, err)
	}

	if apiKey.User == nil {
		return nil, ErrUserNotFound
	}
	return apiKey.User, nil
}

// generateAPIKey produces a "pm_" prefixed key from a crypto-random
// alphanumeric suffix.
func generateAPIKey() (string, error) {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	key := make([]byte, apiKeyLength)
	for i := range key {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		if err != nil {
			return "", err
		}
		key[i] = chars[n.Int64()]
	}
	return apiKeyPrefix + string(key), nil
}
