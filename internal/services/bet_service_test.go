package services

import (
	"context"
	"testing"

	"pollmarket/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceBetDebitsExactWager(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBetService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "bettor", 1000)
	poll := createTestPoll(t, db, user.ID, false, "Yes", "No")

	bet, err := svc.PlaceBet(ctx, user.ID, &models.PlaceBetRequest{
		PollID:        poll.ID,
		OutcomeID:     poll.Outcomes[0].ID,
		PointsWagered: 100,
	})
	require.NoError(t, err)
	require.NotNil(t, bet)

	assert.Equal(t, int64(100), bet.PointsWagered)
	assert.InDelta(t, 50.0, bet.SharesReceived, 1e-9)
	assert.False(t, bet.Settled)

	after := reloadUser(t, db, user.ID)
	assert.True(t, after.PointBalance.Equal(decimal.NewFromInt(900)),
		"expected balance 900, got %s", after.PointBalance)
}

func TestPlaceBetGrowsOutcomeLiquidity(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBetService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "bettor", 1000)
	poll := createTestPoll(t, db, user.ID, true, "Yes", "No")
	yes := poll.Outcomes[0]

	_, err := svc.PlaceBet(ctx, user.ID, &models.PlaceBetRequest{
		PollID: poll.ID, OutcomeID: yes.ID, PointsWagered: 100,
	})
	require.NoError(t, err)

	var reloaded models.Outcome
	require.NoError(t, db.First(&reloaded, yes.ID).Error)
	assert.InDelta(t, 150.0, reloaded.TotalShares, 1e-9)

	// The other outcome's liquidity is untouched.
	var other models.Outcome
	require.NoError(t, db.First(&other, poll.Outcomes[1].ID).Error)
	assert.InDelta(t, InitialOutcomeShares, other.TotalShares, 1e-9)
}

func TestPlaceBetAppendsFullProbabilityVector(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBetService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "bettor", 1000)
	poll := createTestPoll(t, db, user.ID, true, "Yes", "No", "Maybe")

	_, err := svc.PlaceBet(ctx, user.ID, &models.PlaceBetRequest{
		PollID: poll.ID, OutcomeID: poll.Outcomes[0].ID, PointsWagered: 100,
	})
	require.NoError(t, err)

	// One row per outcome, one shared timestamp, volume-based values that
	// include the just-inserted bet.
	var rows []models.ProbabilityHistory
	require.NoError(t, db.Where("poll_id = ?", poll.ID).Find(&rows).Error)
	require.Len(t, rows, 3)

	byOutcome := make(map[uint]models.ProbabilityHistory)
	for _, row := range rows {
		byOutcome[row.OutcomeID] = row
		assert.Equal(t, rows[0].Timestamp.UnixNano(), row.Timestamp.UnixNano())
	}
	assert.InDelta(t, 100.0, byOutcome[poll.Outcomes[0].ID].Probability, 1e-9)
	assert.InDelta(t, 0.0, byOutcome[poll.Outcomes[1].ID].Probability, 1e-9)
	assert.InDelta(t, 0.0, byOutcome[poll.Outcomes[2].ID].Probability, 1e-9)

	// A second bet appends another complete vector.
	_, err = svc.PlaceBet(ctx, user.ID, &models.PlaceBetRequest{
		PollID: poll.ID, OutcomeID: poll.Outcomes[1].ID, PointsWagered: 300,
	})
	require.NoError(t, err)

	require.NoError(t, db.Where("poll_id = ?", poll.ID).Find(&rows).Error)
	assert.Len(t, rows, 6)
}

func TestPlaceBetPreconditions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBetService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "bettor", 100)
	poll := createTestPoll(t, db, user.ID, false, "Yes", "No")
	otherPoll := createTestPoll(t, db, user.ID, false, "A", "B")

	tests := []struct {
		name    string
		userID  uint
		req     models.PlaceBetRequest
		wantErr error
	}{
		{
			name:    "zero amount",
			userID:  user.ID,
			req:     models.PlaceBetRequest{PollID: poll.ID, OutcomeID: poll.Outcomes[0].ID, PointsWagered: 0},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			userID:  user.ID,
			req:     models.PlaceBetRequest{PollID: poll.ID, OutcomeID: poll.Outcomes[0].ID, PointsWagered: -5},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "unknown user",
			userID:  9999,
			req:     models.PlaceBetRequest{PollID: poll.ID, OutcomeID: poll.Outcomes[0].ID, PointsWagered: 10},
			wantErr: ErrUserNotFound,
		},
		{
			// User existence is checked before the amount.
			name:    "unknown user with zero amount",
			userID:  9999,
			req:     models.PlaceBetRequest{PollID: poll.ID, OutcomeID: poll.Outcomes[0].ID, PointsWagered: 0},
			wantErr: ErrUserNotFound,
		},
		{
			name:    "insufficient funds",
			userID:  user.ID,
			req:     models.PlaceBetRequest{PollID: poll.ID, OutcomeID: poll.Outcomes[0].ID, PointsWagered: 101},
			wantErr: ErrInsufficientFunds,
		},
		{
			name:    "unknown poll",
			userID:  user.ID,
			req:     models.PlaceBetRequest{PollID: 9999, OutcomeID: poll.Outcomes[0].ID, PointsWagered: 10},
			wantErr: ErrPollNotFound,
		},
		{
			name:    "unknown outcome",
			userID:  user.ID,
			req:     models.PlaceBetRequest{PollID: poll.ID, OutcomeID: 9999, PointsWagered: 10},
			wantErr: ErrOutcomeNotFound,
		},
		{
			name:    "outcome from another poll",
			userID:  user.ID,
			req:     models.PlaceBetRequest{PollID: poll.ID, OutcomeID: otherPoll.Outcomes[0].ID, PointsWagered: 10},
			wantErr: ErrOutcomeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceBet(ctx, tt.userID, &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// No partial effects from any rejection.
	after := reloadUser(t, db, user.ID)
	assert.True(t, after.PointBalance.Equal(decimal.NewFromInt(100)))
	var betCount int64
	require.NoError(t, db.Model(&models.Bet{}).Count(&betCount).Error)
	assert.Zero(t, betCount)
}

func TestPlaceBetRejectsBetOnInactivePoll(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBetService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "bettor", 1000)

	for _, status := range []models.PollStatus{models.PollStatusResolved, models.PollStatusCancelled} {
		poll := createTestPoll(t, db, user.ID, false, "Yes", "No")
		require.NoError(t, db.Model(poll).Update("status", status).Error)

		_, err := svc.PlaceBet(ctx, user.ID, &models.PlaceBetRequest{
			PollID: poll.ID, OutcomeID: poll.Outcomes[0].ID, PointsWagered: 10,
		})
		assert.ErrorIs(t, err, ErrPollNotActive, "status %s", status)
	}
}

func TestPlaceBetSingleChoiceEnforcement(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBetService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "bettor", 1000)
	poll := createTestPoll(t, db, user.ID, false, "Yes", "No")
	yes, no := poll.Outcomes[0], poll.Outcomes[1]

	_, err := svc.PlaceBet(ctx, user.ID, &models.PlaceBetRequest{
		PollID: poll.ID, OutcomeID: yes.ID, PointsWagered: 50,
	})
	require.NoError(t, err)

	// A different outcome of the same poll is rejected.
	_, err = svc.PlaceBet(ctx, user.ID, &models.PlaceBetRequest{
		PollID: poll.ID, OutcomeID: no.ID, PointsWagered: 50,
	})
	assert.ErrorIs(t, err, ErrSingleChoiceViolation)

	// The same outcome accumulates.
	_, err = svc.PlaceBet(ctx, user.ID, &models.PlaceBetRequest{
		PollID: poll.ID, OutcomeID: yes.ID, PointsWagered: 50,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Bet{}).
		Where("user_id = ? AND outcome_id = ?", user.ID, yes.ID).
		Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestPlaceBetMultipleVotesAllowed(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBetService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "bettor", 1000)
	poll := createTestPoll(t, db, user.ID, true, "Yes", "No")

	for _, outcome := range poll.Outcomes {
		_, err := svc.PlaceBet(ctx, user.ID, &models.PlaceBetRequest{
			PollID: poll.ID, OutcomeID: outcome.ID, PointsWagered: 100,
		})
		require.NoError(t, err)
	}
}

func TestGetUserBetsFiltersByPoll(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBetService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "bettor", 1000)
	poll1 := createTestPoll(t, db, user.ID, false, "Yes", "No")
	poll2 := createTestPoll(t, db, user.ID, false, "A", "B")

	for _, poll := range []*models.Poll{poll1, poll2} {
		_, err := svc.PlaceBet(ctx, user.ID, &models.PlaceBetRequest{
			PollID: poll.ID, OutcomeID: poll.Outcomes[0].ID, PointsWagered: 10,
		})
		require.NoError(t, err)
	}

	all, err := svc.GetUserBets(ctx, user.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := svc.GetUserBets(ctx, user.ID, &poll1.ID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, poll1.ID, scoped[0].PollID)
	require.NotNil(t, scoped[0].Outcome)
	assert.Equal(t, "Yes", scoped[0].Outcome.Title)
}
