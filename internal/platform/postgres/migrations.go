package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Davlaati/humo-ai/internal/common/logger"
)

// RunMigrations applies the embedded schema migrations in order. Each
// migration runs in its own transaction and is recorded in
// schema_migrations so reruns are no-ops.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Users},
		{2, migration002Transactions},
	}

	for _, m := range migrations {
		if err := applyMigration(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
	}

	return nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, version int, sql string) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check migration: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version) VALUES ($1)", version,
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info().Int("version", version).Msg("Migration applied")
	return nil
}

var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT PRIMARY KEY,
	name VARCHAR(128) NOT NULL,
	username VARCHAR(64),
	level VARCHAR(32) NOT NULL DEFAULT 'Beginner',
	goal VARCHAR(255),
	interests TEXT[] NOT NULL DEFAULT '{}',
	coins INT NOT NULL DEFAULT 0,
	xp INT NOT NULL DEFAULT 0,
	streak INT NOT NULL DEFAULT 0,
	streak_freeze_count INT NOT NULL DEFAULT 0,
	is_premium BOOLEAN NOT NULL DEFAULT FALSE,
	telegram_stars INT NOT NULL DEFAULT 0,
	joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_active TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_rewarded_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_users_xp ON users (xp DESC);
CREATE INDEX IF NOT EXISTS idx_users_last_active ON users (last_active);
`

// transactions is append-only. provider_charge_id deliberately carries no
// uniqueness constraint; duplicate confirmation delivery is applied twice.
// TODO: add a unique index on provider_charge_id once reconciliation
// correlates confirmations with their pending invoice rows.
var migration002Transactions = `
CREATE TABLE IF NOT EXISTS transactions (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	kind VARCHAR(32) NOT NULL,
	amount INT NOT NULL,
	currency VARCHAR(16) NOT NULL DEFAULT 'XTR',
	status VARCHAR(16) NOT NULL DEFAULT 'pending',
	provider_charge_id VARCHAR(128),
	payload TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions (user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions (created_at);
`
