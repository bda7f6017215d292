package services

import (
	"testing"

	"pollmarket/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Poll{},
		&models.Outcome{},
		&models.Bet{},
		&models.ProbabilityHistory{},
		&models.APIKey{},
		&models.LinkToken{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, authID string, balance int64) *models.User {
	t.Helper()

	user := &models.User{
		Name:         "user " + authID,
		Email:        authID + "@example.com",
		AuthID:       authID,
		PointBalance: decimal.NewFromInt(balance),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestAdmin(t *testing.T, db *gorm.DB, authID string) *models.User {
	t.Helper()

	admin := createTestUser(t, db, authID, 0)
	require.NoError(t, db.Model(admin).Update("is_admin", true).Error)
	admin.IsAdmin = true
	return admin
}

// createTestPoll creates an active poll with the given outcome titles, each
// seeded with the initial liquidity.
func createTestPoll(t *testing.T, db *gorm.DB, creatorID uint, allowMultiple bool, outcomeTitles ...string) *models.Poll {
	t.Helper()

	poll := &models.Poll{
		Title:              "test poll",
		CreatorID:          creatorID,
		Status:             models.PollStatusActive,
		AllowMultipleVotes: allowMultiple,
	}
	require.NoError(t, db.Create(poll).Error)

	for i, title := range outcomeTitles {
		outcome := models.Outcome{
			PollID:      poll.ID,
			Title:       title,
			TotalShares: InitialOutcomeShares,
			Order:       i,
		}
		require.NoError(t, db.Create(&outcome).Error)
		poll.Outcomes = append(poll.Outcomes, outcome)
	}
	return poll
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()

	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return &user
}
