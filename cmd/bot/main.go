package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rollhouse/rollhouse/internal/config"
	localdice "github.com/rollhouse/rollhouse/internal/dice"
	"github.com/rollhouse/rollhouse/internal/handlers/telegram"
	gameRepo "github.com/rollhouse/rollhouse/internal/repositories/game"
	ledgerRepo "github.com/rollhouse/rollhouse/internal/repositories/ledger"
	diceService "github.com/rollhouse/rollhouse/internal/services/dice"
	gameService "github.com/rollhouse/rollhouse/internal/services/game"
	"github.com/rollhouse/rollhouse/internal/services/messaging"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}

	ledger, err := ledgerRepo.NewRedis(&ledgerRepo.Config{
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("failed to create ledger repository", zap.Error(err))
	}

	games, err := gameRepo.NewRedis(&gameRepo.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		logger.Fatal("failed to create game repository", zap.Error(err))
	}

	identities := cfg.SupportBotTokens
	if len(identities) == 0 {
		identities = []string{cfg.BotToken}
	}

	diceSvc, err := diceService.New(&diceService.Config{
		Identities: identities,
		Provider:   diceService.NewTelegramProvider(&diceService.TelegramProviderConfig{}),
		Fallback:   localdice.New(&localdice.Config{}),
		PaceDelay:  cfg.PaceDelay,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("failed to create dice service", zap.Error(err))
	}

	notifier, err := messaging.New(&messaging.Config{
		BotToken: cfg.BotToken,
	})
	if err != nil {
		logger.Fatal("failed to create notifier", zap.Error(err))
	}

	gameSvc, err := gameService.New(&gameService.Config{
		GameRepo:    games,
		LedgerRepo:  ledger,
		DiceService: diceSvc,
		Notifier:    notifier,
		MinBet:      cfg.MinBet,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("failed to create game service", zap.Error(err))
	}

	bot, err := telegram.New(&telegram.Config{
		BotToken:    cfg.BotToken,
		GameService: gameSvc,
		LedgerRepo:  ledger,
		Notifier:    notifier,
		PollTimeout: cfg.PollTimeout,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("failed to create bot", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("bot stopped unexpectedly", zap.Error(err))
	}

	logger.Info("bot has been shut down")
}
