package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Davlaati/humo-ai/internal/features/payments/models"
	"github.com/Davlaati/humo-ai/internal/features/payments/repository"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.TransactionRepository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) AppendPending(ctx context.Context, trx *models.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, kind, amount, currency, status, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		trx.UserID, trx.Kind, trx.Amount, trx.Currency, models.StatusPending,
		nullable(trx.Payload), trx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append pending transaction: %w", err)
	}

	return nil
}

// ApplyConfirmation performs the credit-and-log unit of work in a single
// database transaction so a crash can never leave a credited balance
// without its ledger row, or the reverse. The stars credit is a relative
// update; concurrent confirmations for the same user serialize on the
// row lock.
func (r *postgresRepository) ApplyConfirmation(ctx context.Context, conf repository.Confirmation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	user := conf.User
	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, name, username, level, interests, joined_at, last_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, user.ID, user.Name, nullable(user.Username), user.Level, user.Interests,
		user.JoinedAt, user.LastActive)
	if err != nil {
		return fmt.Errorf("failed to ensure user row: %w", err)
	}

	// is_premium is monotonic: confirmations only ever raise it.
	_, err = tx.Exec(ctx, `
		UPDATE users
		SET is_premium = is_premium OR $2,
			telegram_stars = telegram_stars + $3
		WHERE id = $1
	`, user.ID, conf.SetPremium, conf.StarsDelta)
	if err != nil {
		return fmt.Errorf("failed to credit user: %w", err)
	}

	trx := conf.Transaction
	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, kind, amount, currency, status, provider_charge_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, trx.UserID, trx.Kind, trx.Amount, trx.Currency, models.StatusSuccess,
		nullable(trx.ProviderChargeID), nullable(trx.Payload), trx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append success transaction: %w", err)
	}

	return tx.Commit(ctx)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
