package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Davlaati/humo-ai/internal/common/logger"
	"github.com/Davlaati/humo-ai/internal/features/economy"
	"github.com/Davlaati/humo-ai/internal/features/user/models"
	"github.com/Davlaati/humo-ai/internal/features/user/repository"
)

// Service runs the launch-data handshake: verify the signed payload,
// look up or create the user, run the economy rules and hand back a
// bearer token.
type Service struct {
	users    repository.UserRepository
	tokens   *TokenIssuer
	rules    economy.Rules
	botToken string
	maxAge   time.Duration
	now      func() time.Time
}

func NewService(users repository.UserRepository, tokens *TokenIssuer, rules economy.Rules, botToken string, maxAge time.Duration) *Service {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		rules:    rules,
		botToken: botToken,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Authenticate verifies launch data and returns a session token. First
// contact creates the user with a starting streak of 1; later contacts
// refresh the identity fields and apply the streak and reward rules.
func (s *Service) Authenticate(ctx context.Context, initData string) (string, error) {
	now := s.now().UTC()

	identity, err := VerifyInitData(initData, s.botToken, s.maxAge, now)
	if err != nil {
		return "", err
	}

	user, err := s.users.GetByID(ctx, identity.ID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		user = models.NewUser(identity.ID, identity.FirstName, identity.Username, now)
		user.Streak = 1
		if err := s.users.Create(ctx, user); err != nil {
			return "", fmt.Errorf("failed to create user: %w", err)
		}
		logger.Info().Int64("user_id", user.ID).Msg("New user registered")
	case err != nil:
		return "", fmt.Errorf("failed to load user: %w", err)
	default:
		if identity.FirstName != "" {
			user.Name = identity.FirstName
		}
		if identity.Username != "" {
			user.Username = identity.Username
		}
		s.rules.Apply(user, now)
		user.Level = models.LevelForXP(user.XP)
		if err := s.users.Update(ctx, user); err != nil {
			return "", fmt.Errorf("failed to update user: %w", err)
		}
	}

	return s.tokens.Issue(user.ID)
}
