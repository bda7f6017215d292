package services

import (
	"context"
	"testing"

	"pollmarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePollSeedsOutcomes(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPollService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "creator", 0)

	poll, err := svc.CreatePoll(ctx, user.ID, &models.CreatePollRequest{
		Title:       "Who wins the finals?",
		Description: "Best of seven",
		Outcomes:    []string{"Hawks", "Wolves", "Draw"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.PollStatusActive, poll.Status)
	assert.Equal(t, user.ID, poll.CreatorID)
	require.Len(t, poll.Outcomes, 3)

	for i, outcome := range poll.Outcomes {
		assert.Equal(t, i, outcome.Order)
		assert.InDelta(t, InitialOutcomeShares, outcome.TotalShares, 1e-9)
		assert.Equal(t, poll.ID, outcome.PollID)
	}
}

func TestCreatePollValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPollService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "creator", 0)

	tests := []struct {
		name     string
		outcomes []string
	}{
		{"single outcome", []string{"Yes"}},
		{"no outcomes", nil},
		{"eleven outcomes", []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}},
		{"duplicate titles", []string{"Yes", "yes"}},
		{"blank title", []string{"Yes", "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePoll(ctx, user.ID, &models.CreatePollRequest{
				Title:    "bad poll",
				Outcomes: tt.outcomes,
			})
			assert.ErrorIs(t, err, ErrInvalidOutcomes)
		})
	}

	_, err := svc.CreatePoll(ctx, 9999, &models.CreatePollRequest{
		Title:    "orphan poll",
		Outcomes: []string{"Yes", "No"},
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetPollProbabilitiesAreVolumeBased(t *testing.T) {
	db := setupTestDB(t)
	polls := NewPollService(db)
	bets := NewBetService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "bettor", 1000)
	poll := createTestPoll(t, db, user.ID, true, "Yes", "No")
	yes, no := poll.Outcomes[0], poll.Outcomes[1]

	// With no volume every outcome shows zero, not an even split.
	resp, err := polls.GetPoll(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.TotalVolume)
	for _, detail := range resp.OutcomeDetails {
		assert.Zero(t, detail.Probability)
	}

	placeBet(t, bets, user.ID, poll.ID, yes.ID, 100)
	placeBet(t, bets, user.ID, poll.ID, no.ID, 300)

	resp, err = polls.GetPoll(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(400), resp.TotalVolume)
	assert.Equal(t, 2, resp.TotalBets)

	require.Len(t, resp.OutcomeDetails, 2)
	assert.InDelta(t, 25.0, resp.OutcomeDetails[0].Probability, 1e-9)
	assert.InDelta(t, 75.0, resp.OutcomeDetails[1].Probability, 1e-9)
	assert.Equal(t, int64(100), resp.OutcomeDetails[0].Volume)
	assert.Equal(t, int64(300), resp.OutcomeDetails[1].Volume)

	// Probability tracks volume share, not AMM shares: "Yes" has more
	// liquidity per point than "No" yet a lower probability.
	assert.Greater(t, resp.OutcomeDetails[1].Probability, resp.OutcomeDetails[0].Probability)
}

func TestGetPollNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPollService(db)

	_, err := svc.GetPoll(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrPollNotFound)
}

func TestListPollsFiltersByStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPollService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "creator", 0)
	createTestPoll(t, db, user.ID, false, "Yes", "No")
	resolved := createTestPoll(t, db, user.ID, false, "A", "B")
	require.NoError(t, db.Model(resolved).Update("status", models.PollStatusResolved).Error)

	all, err := svc.ListPolls(ctx, nil, 20, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active := models.PollStatusActive
	filtered, err := svc.ListPolls(ctx, &active, 20, 0)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, models.PollStatusActive, filtered[0].Status)
}

func TestGetProbabilityHistoryGroupsByTimestamp(t *testing.T) {
	db := setupTestDB(t)
	polls := NewPollService(db)
	bets := NewBetService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "bettor", 1000)
	poll := createTestPoll(t, db, user.ID, true, "Yes", "No")
	yes, no := poll.Outcomes[0], poll.Outcomes[1]

	placeBet(t, bets, user.ID, poll.ID, yes.ID, 100)
	placeBet(t, bets, user.ID, poll.ID, no.ID, 100)

	history, err := polls.GetProbabilityHistory(ctx, poll.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"Yes", "No"}, history.Outcomes)
	require.Len(t, history.History, 2)

	// Each point holds the complete vector, oldest first.
	first, second := history.History[0], history.History[1]
	assert.False(t, second.Timestamp.Before(first.Timestamp))

	assert.InDelta(t, 100.0, first.Probabilities["Yes"], 1e-9)
	assert.InDelta(t, 0.0, first.Probabilities["No"], 1e-9)
	assert.InDelta(t, 50.0, second.Probabilities["Yes"], 1e-9)
	assert.InDelta(t, 50.0, second.Probabilities["No"], 1e-9)
}

func TestGetUserPolls(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPollService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", 0)
	bob := createTestUser(t, db, "bob", 0)
	createTestPoll(t, db, alice.ID, false, "Yes", "No")
	createTestPoll(t, db, bob.ID, false, "A", "B")

	mine, err := svc.GetUserPolls(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, alice.ID, mine[0].CreatorID)
}
