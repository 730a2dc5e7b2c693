package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"resume-chatbot/internal/api"
	"resume-chatbot/internal/api/handlers"
	"resume-chatbot/internal/repository"
	"resume-chatbot/internal/service"
	"resume-chatbot/pkg/config"
	"resume-chatbot/pkg/logger"
	"resume-chatbot/pkg/postgres"

	"go.uber.org/zap"
)

// @title Resume Chatbot API
// @version 1.0
// @description RAG backend for the portfolio website chat widget

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting resume chatbot service")

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)

	llmService, err := service.NewLLMService(ctx, &cfg.Gemini, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}

	suggestionService, err := service.NewSuggestionService(cfg.Suggestions.DecksPath, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load suggestion decks", zap.Error(err))
	}

	retrievalService := service.NewRetrievalService(cfg.RAG.SimilarityThreshold, cfg.RAG.MaxContextEntries, appLogger)
	ragService := service.NewRAGService()

	chatService := service.NewChatService(
		llmService,
		knowledgeRepo,
		llmService,
		retrievalService,
		ragService,
		suggestionService,
		cfg.RAG.TopK,
		appLogger,
	)

	chatHandler := handlers.NewChatHandler(chatService, appLogger)
	healthHandler := handlers.NewHealthHandler(db, appLogger)

	app := api.SetupRouter(chatHandler, healthHandler)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
