package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Davlaati/humo-ai/internal/features/user/models"
	"github.com/Davlaati/humo-ai/internal/features/user/repository"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &postgresRepository{pool: pool}
}

const userColumns = `id, name, username, level, goal, interests, coins, xp,
	streak, streak_freeze_count, is_premium, telegram_stars,
	joined_at, last_active, last_rewarded_at`

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (r *postgresRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, username, level, goal, interests, coins, xp,
			streak, streak_freeze_count, is_premium, telegram_stars,
			joined_at, last_active, last_rewarded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			username = EXCLUDED.username,
			last_active = EXCLUDED.last_active
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Name, nullable(user.Username), user.Level, nullable(user.Goal),
		user.Interests, user.Coins, user.XP, user.Streak, user.StreakFreezeCount,
		user.IsPremium, user.TelegramStars, user.JoinedAt, user.LastActive, user.LastRewardedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *postgresRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $2, username = $3, level = $4, goal = $5, interests = $6,
			coins = $7, xp = $8, streak = $9, streak_freeze_count = $10,
			is_premium = $11, telegram_stars = $12,
			last_active = $13, last_rewarded_at = $14
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		user.ID, user.Name, nullable(user.Username), user.Level, nullable(user.Goal),
		user.Interests, user.Coins, user.XP, user.Streak, user.StreakFreezeCount,
		user.IsPremium, user.TelegramStars, user.LastActive, user.LastRewardedAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

func (r *postgresRepository) Leaderboard(ctx context.Context, activeSince *time.Time, limit int) ([]*models.LeaderboardEntry, error) {
	query := `
		SELECT id, name, username, xp
		FROM users
		WHERE ($1::timestamptz IS NULL OR last_active >= $1)
		ORDER BY xp DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, activeSince, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		var (
			entry    models.LeaderboardEntry
			username *string
		)
		if err := rows.Scan(&entry.UserID, &entry.Name, &username, &entry.XP); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		if username != nil {
			entry.Username = *username
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		user     models.User
		username *string
		goal     *string
	)
	err := row.Scan(
		&user.ID, &user.Name, &username, &user.Level, &goal, &user.Interests,
		&user.Coins, &user.XP, &user.Streak, &user.StreakFreezeCount,
		&user.IsPremium, &user.TelegramStars,
		&user.JoinedAt, &user.LastActive, &user.LastRewardedAt)
	if err != nil {
		return nil, err
	}

	if username != nil {
		user.Username = *username
	}
	if goal != nil {
		user.Goal = *goal
	}
	if user.Interests == nil {
		user.Interests = []string{}
	}

	return &user, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
