package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Davlaati/humo-ai/internal/features/user/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository persists the user aggregate. Each write method is a
// single atomic statement; cross-aggregate writes (payment credits plus
// their ledger rows) live in the payments repository.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Leaderboard(ctx context.Context, activeSince *time.Time, limit int) ([]*models.LeaderboardEntry, error)
}
