package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Davlaati/humo-ai/internal/features/economy"
	"github.com/Davlaati/humo-ai/internal/features/user/models"
	"github.com/Davlaati/humo-ai/internal/features/user/repository"
)

var ErrUserNotFound = errors.New("user not found")

// Period selects the leaderboard window.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodOverall Period = "overall"
)

const (
	defaultLeaderboardLimit = 50
	maxEarnedPerUpdate      = 500
)

type UserService interface {
	Profile(ctx context.Context, userID int64) (*models.ProfileResponse, error)
	UpdateProgress(ctx context.Context, userID int64, earnedXP, earnedCoins int) (*models.User, error)
	Leaderboard(ctx context.Context, period Period, limit int) ([]*models.LeaderboardEntry, error)
}

type userService struct {
	repo  repository.UserRepository
	rules economy.Rules
	now   func() time.Time
}

func NewUserService(repo repository.UserRepository, rules economy.Rules) UserService {
	return &userService{
		repo:  repo,
		rules: rules,
		now:   time.Now,
	}
}

// Profile applies the streak and reward rules before returning the
// aggregate, so reading the profile counts as an authenticated touch.
func (s *userService) Profile(ctx context.Context, userID int64) (*models.ProfileResponse, error) {
	user, err := s.touch(ctx, userID)
	if err != nil {
		return nil, err
	}

	return toProfileResponse(user), nil
}

// UpdateProgress credits lesson results on top of the regular economy
// touch. Earned amounts are clamped to a per-update ceiling.
func (s *userService) UpdateProgress(ctx context.Context, userID int64, earnedXP, earnedCoins int) (*models.User, error) {
	if earnedXP < 0 || earnedCoins < 0 || earnedXP > maxEarnedPerUpdate || earnedCoins > maxEarnedPerUpdate {
		return nil, fmt.Errorf("earned amounts out of range")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.rules.Apply(user, s.now().UTC())
	user.XP += earnedXP
	user.Coins += earnedCoins
	user.Level = models.LevelForXP(user.XP)

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) Leaderboard(ctx context.Context, period Period, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 || limit > defaultLeaderboardLimit {
		limit = defaultLeaderboardLimit
	}

	var activeSince *time.Time
	switch period {
	case PeriodWeekly:
		since := s.now().UTC().Add(-7 * 24 * time.Hour)
		activeSince = &since
	case PeriodMonthly:
		since := s.now().UTC().Add(-30 * 24 * time.Hour)
		activeSince = &since
	}

	return s.repo.Leaderboard(ctx, activeSince, limit)
}

func (s *userService) touch(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.rules.Apply(user, s.now().UTC())
	user.Level = models.LevelForXP(user.XP)

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func toProfileResponse(user *models.User) *models.ProfileResponse {
	return &models.ProfileResponse{
		ID:            user.ID,
		Name:          user.Name,
		Username:      user.Username,
		Level:         user.Level,
		Goal:          user.Goal,
		Interests:     user.Interests,
		Coins:         user.Coins,
		XP:            user.XP,
		Streak:        user.Streak,
		IsPremium:     user.IsPremium,
		TelegramStars: user.TelegramStars,
		JoinedAt:      user.JoinedAt,
		LastActive:    user.LastActive,
	}
}
