package main

import (
	"net/http"

	"github.com/wersching/riddlegate/internal/api"
	"github.com/wersching/riddlegate/internal/chat"
	"github.com/wersching/riddlegate/internal/config"
	"github.com/wersching/riddlegate/internal/llm"
	"github.com/wersching/riddlegate/internal/store"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// Initialize inference gateway
	gateway, err := llm.New(
		cfg.OpenAIBaseURL,
		cfg.OpenAIAPIKey,
		cfg.Model,
		cfg.InferenceTimeout,
	)
	if err != nil {
		logger.Fatal("failed to initialize inference gateway",
			zap.Error(err),
			zap.String("baseURL", cfg.OpenAIBaseURL))
	}

	// Room state lives in memory only and is gone on restart.
	conversations := store.New()
	svc := chat.NewService(conversations, gateway, cfg.SystemPrompt, logger)
	handler := api.NewHandler(svc, logger)

	logger.Info("Starting server",
		zap.String("addr", cfg.Addr),
		zap.String("model", cfg.Model))
	if err := http.ListenAndServe(cfg.Addr, handler.Routes(cfg.WebDir)); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
