package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Davlaati/humo-ai/internal/common/config"
	"github.com/Davlaati/humo-ai/internal/common/logger"
	"github.com/Davlaati/humo-ai/internal/common/middleware"
	"github.com/Davlaati/humo-ai/internal/features/auth"
	authHTTP "github.com/Davlaati/humo-ai/internal/features/auth/delivery/http"
	dictionaryCache "github.com/Davlaati/humo-ai/internal/features/dictionary/cache/redis"
	dictionaryHTTP "github.com/Davlaati/humo-ai/internal/features/dictionary/delivery/http"
	dictionaryService "github.com/Davlaati/humo-ai/internal/features/dictionary/service"
	"github.com/Davlaati/humo-ai/internal/features/economy"
	paymentsHTTP "github.com/Davlaati/humo-ai/internal/features/payments/delivery/http"
	paymentsRepo "github.com/Davlaati/humo-ai/internal/features/payments/repository/postgres"
	paymentsService "github.com/Davlaati/humo-ai/internal/features/payments/service"
	userHTTP "github.com/Davlaati/humo-ai/internal/features/user/delivery/http"
	userRepo "github.com/Davlaati/humo-ai/internal/features/user/repository/postgres"
	userService "github.com/Davlaati/humo-ai/internal/features/user/service"
	"github.com/Davlaati/humo-ai/internal/platform/gemini"
	"github.com/Davlaati/humo-ai/internal/platform/postgres"
	"github.com/Davlaati/humo-ai/internal/platform/redis"
	"github.com/Davlaati/humo-ai/internal/platform/telegram"
)

// @title           HUMO AI API
// @version         1.0
// @description     Backend for the HUMO AI language-learning Telegram Mini App.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("humo-ai-api", cfg.Debug)
	logger.Info().Bool("debug", cfg.Debug).Msg("Starting HUMO AI backend")

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
	logger.Info().Msg("Database ready")

	redisClient, err := redis.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	rules := economy.Rules{
		DailyRewardCoins: cfg.Economy.DailyRewardCoins,
		DailyRewardXP:    cfg.Economy.DailyRewardXP,
	}

	users := userRepo.NewPostgresRepository(pool)
	ledger := paymentsRepo.NewPostgresRepository(pool)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	authSvc := auth.NewService(users, tokens, rules, cfg.WebAppToken(),
		time.Duration(cfg.Auth.InitDataMaxAgeHours)*time.Hour)

	userSvc := userService.NewUserService(users, rules)

	invoiceClient := telegram.NewClient(cfg.Telegram.BotToken)
	paymentsSvc := paymentsService.NewService(users, ledger, invoiceClient)

	entryCache := dictionaryCache.NewEntryCache(redisClient,
		time.Duration(cfg.Dictionary.CacheTTLMinutes)*time.Minute)
	generator := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model)
	dictionarySvc := dictionaryService.NewDictionaryService(users, generator, entryCache)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	router.Use(cors.New(corsConfig))

	authHandler := authHTTP.NewAuthHandler(authSvc)
	userHandler := userHTTP.NewUserHandler(userSvc)
	paymentsHandler := paymentsHTTP.NewPaymentsHandler(paymentsSvc)
	dictionaryHandler := dictionaryHTTP.NewDictionaryHandler(dictionarySvc)

	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)
		userHandler.RegisterPublicRoutes(v1)
		paymentsHandler.RegisterPublicRoutes(v1)

		authed := v1.Group("")
		authed.Use(auth.Middleware(tokens))
		{
			userHandler.RegisterRoutes(authed)
			paymentsHandler.RegisterRoutes(authed)
			dictionaryHandler.RegisterRoutes(authed)
		}
	}

	registerProbes(router, pool, redisClient)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func registerProbes(router *gin.Engine, pool *pgxpool.Pool, redisClient *redis.Client) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "humo-ai-backend",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unready", "error": "postgres unavailable"})
			return
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unready", "error": "redis unavailable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "humo-ai-backend",
		})
	})
}
