package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"pollmarket/internal/models"

	"gorm.io/gorm"
)

const (
	minOutcomes = 2
	maxOutcomes = 10
)

// PollService handles poll creation and read-side aggregation
type PollService struct {
	db *gorm.DB
}

// NewPollService creates a new poll service
func NewPollService(db *gorm.DB) *PollService {
	return &PollService{db: db}
}

// CreatePoll creates a poll and its outcomes in one transaction. Outcome count
// is fixed here; every outcome starts with InitialOutcomeShares liquidity.
func (s *PollService) CreatePoll(ctx context.Context, creatorID uint, req *models.CreatePollRequest) (*models.Poll, error) {
	if len(req.Outcomes) < minOutcomes || len(req.Outcomes) > maxOutcomes {
		return nil, ErrInvalidOutcomes
	}

	seen := make(map[string]bool, len(req.Outcomes))
	for _, title := range req.Outcomes {
		title = strings.TrimSpace(title)
		if title == "" || seen[strings.ToLower(title)] {
			return nil, ErrInvalidOutcomes
		}
		seen[strings.ToLower(title)] = true
	}

	var creator models.User
	if err := s.db.WithContext(ctx).First(&creator, creatorID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}

	poll := &models.Poll{
		Title:              req.Title,
		Description:        req.Description,
		CreatorID:          creatorID,
		Status:             models.PollStatusActive,
		AllowMultipleVotes: req.AllowMultipleVotes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(poll).Error; err != nil {
			return fmt.Errorf("failed to create poll: %w", err)
		}

		for i, title := range req.Outcomes {
			outcome := models.Outcome{
				PollID:      poll.ID,
				Title:       strings.TrimSpace(title),
				TotalShares: InitialOutcomeShares,
				Order:       i,
			}
			if err := tx.Create(&outcome).Error; err != nil {
				return fmt.Errorf("failed to create outcome: %w", err)
			}
			poll.Outcomes = append(poll.Outcomes, outcome)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return poll, nil
}

// GetPoll retrieves a poll with volume-derived probabilities per outcome
func (s *PollService) GetPoll(ctx context.Context, pollID uint) (*models.PollResponse, error) {
	var poll models.Poll
	if err := s.db.WithContext(ctx).Preload("Creator").First(&poll, pollID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	return s.toPollResponse(ctx, &poll)
}

// ListPolls retrieves polls, newest first, optionally filtered by status
func (s *PollService) ListPolls(ctx context.Context, status *models.PollStatus, limit, offset int) ([]models.PollResponse, error) {
	query := s.db.WithContext(ctx).Preload("Creator").Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var polls []models.Poll
	if err := query.Limit(limit).Offset(offset).Find(&polls).Error; err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}

	responses := make([]models.PollResponse, 0, len(polls))
	for i := range polls {
		resp, err := s.toPollResponse(ctx, &polls[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

// GetUserPolls retrieves polls created by a user, newest first
func (s *PollService) GetUserPolls(ctx context.Context, userID uint) ([]models.Poll, error) {
	var polls []models.Poll
	if err := s.db.WithContext(ctx).
		Where("creator_id = ?", userID).
		Order("created_at DESC").
		Find(&polls).Error; err != nil {
		return nil, fmt.Errorf("failed to get user polls: %w", err)
	}
	return polls, nil
}

// GetProbabilityHistory returns the charting series for a poll: one
// probability vector per bet timestamp, oldest first.
func (s *PollService) GetProbabilityHistory(ctx context.Context, pollID uint) (*models.ProbabilityHistoryResponse, error) {
	var outcomes []models.Outcome
	if err := s.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		Order("display_order ASC").
		Find(&outcomes).Error; err != nil {
		return nil, fmt.Errorf("failed to get outcomes: %w", err)
	}

	var rows []models.ProbabilityHistory
	if err := s.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		Order("timestamp ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get probability history: %w", err)
	}

	titleByOutcome := make(map[uint]string, len(outcomes))
	titles := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		titleByOutcome[o.ID] = o.Title
		titles = append(titles, o.Title)
	}

	grouped := make(map[int64]*models.ProbabilityPoint)
	for _, row := range rows {
		title, ok := titleByOutcome[row.OutcomeID]
		if !ok {
			continue
		}
		key := row.Timestamp.UnixNano()
		point, ok := grouped[key]
		if !ok {
			point = &models.ProbabilityPoint{
				Timestamp:     row.Timestamp,
				Probabilities: make(map[string]float64, len(outcomes)),
			}
			grouped[key] = point
		}
		point.Probabilities[title] = row.Probability
	}

	history := make([]models.ProbabilityPoint, 0, len(grouped))
	for _, point := range grouped {
		history = append(history, *point)
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].Timestamp.Before(history[j].Timestamp)
	})

	return &models.ProbabilityHistoryResponse{History: history, Outcomes: titles}, nil
}

// toPollResponse attaches volume, bet counts and volume-share probabilities.
// Probability is deliberately derived from wagered volume, not from AMM
// shares; shares only determine the SharesReceived recorded per bet.
func (s *PollService) toPollResponse(ctx context.Context, poll *models.Poll) (*models.PollResponse, error) {
	var outcomes []models.Outcome
	if err := s.db.WithContext(ctx).
		Where("poll_id = ?", poll.ID).
		Order("display_order ASC").
		Find(&outcomes).Error; err != nil {
		return nil, fmt.Errorf("failed to get outcomes: %w", err)
	}

	var bets []models.Bet
	if err := s.db.WithContext(ctx).
		Where("poll_id = ?", poll.ID).
		Find(&bets).Error; err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}

	var totalVolume int64
	volumeByOutcome := make(map[uint]int64, len(outcomes))
	countByOutcome := make(map[uint]int, len(outcomes))
	for _, bet := range bets {
		totalVolume += bet.PointsWagered
		volumeByOutcome[bet.OutcomeID] += bet.PointsWagered
		countByOutcome[bet.OutcomeID]++
	}

	details := make([]models.OutcomeResponse, 0, len(outcomes))
	for _, o := range outcomes {
		volume := volumeByOutcome[o.ID]
		probability := 0.0
		if totalVolume > 0 {
			probability = float64(volume) / float64(totalVolume) * 100
		}
		details = append(details, models.OutcomeResponse{
			ID:          o.ID,
			PollID:      o.PollID,
			Title:       o.Title,
			TotalShares: o.TotalShares,
			Order:       o.Order,
			Probability: probability,
			Volume:      volume,
			BetCount:    countByOutcome[o.ID],
		})
	}

	poll.Outcomes = outcomes
	return &models.PollResponse{
		Poll:           *poll,
		OutcomeDetails: details,
		TotalVolume:    totalVolume,
		TotalBets:      len(bets),
	}, nil
}
