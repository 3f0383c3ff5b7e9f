package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Manshi-Rathour/FilesGPT/internal/config"
	"github.com/Manshi-Rathour/FilesGPT/internal/database"
	"github.com/Manshi-Rathour/FilesGPT/internal/handler"
)

func main() {
	// Optional .env file for local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.StoragePath, 0o755); err != nil {
		logger.Fatal("failed to create storage directory",
			zap.String("path", cfg.StoragePath), zap.Error(err))
	}

	ctx := context.Background()
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: 60 * time.Second,
	})
	if err != nil {
		logger.Fatal("failed to create chat model", zap.Error(err))
	}

	r := handler.SetupRouter(cfg, db, chatModel, logger)

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	logger.Info("starting server",
		zap.String("addr", addr),
		zap.String("environment", cfg.Environment))
	if err := r.Run(addr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	var zc zap.Config
	if cfg.IsDevelopment() {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
