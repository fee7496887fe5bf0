package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Davlaati/humo-ai/internal/bot"
	"github.com/Davlaati/humo-ai/internal/common/config"
	"github.com/Davlaati/humo-ai/internal/common/logger"
	paymentsRepo "github.com/Davlaati/humo-ai/internal/features/payments/repository/postgres"
	paymentsService "github.com/Davlaati/humo-ai/internal/features/payments/service"
	userRepo "github.com/Davlaati/humo-ai/internal/features/user/repository/postgres"
	"github.com/Davlaati/humo-ai/internal/platform/postgres"
	"github.com/Davlaati/humo-ai/internal/platform/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("humo-ai-bot", cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	users := userRepo.NewPostgresRepository(pool)
	ledger := paymentsRepo.NewPostgresRepository(pool)
	invoiceClient := telegram.NewClient(cfg.Telegram.BotToken)
	paymentsSvc := paymentsService.NewService(users, ledger, invoiceClient)

	b, err := bot.New(cfg.Telegram.BotToken, paymentsSvc,
		cfg.Telegram.UpdateTimeout, cfg.Telegram.MaxInflight)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to start bot")
	}

	b.Run(ctx)
	logger.Info().Msg("Bot exited")
}
