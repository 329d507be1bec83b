package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jwebster45206/riddle-rooms/internal/config"
	"github.com/jwebster45206/riddle-rooms/internal/generator"
	"github.com/jwebster45206/riddle-rooms/internal/handlers"
	"github.com/jwebster45206/riddle-rooms/internal/logger"
	"github.com/jwebster45206/riddle-rooms/internal/middleware"
	"github.com/jwebster45206/riddle-rooms/internal/services"
	"github.com/jwebster45206/riddle-rooms/internal/services/queue"
	"github.com/jwebster45206/riddle-rooms/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Riddle Rooms API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"storage_backend", cfg.StorageBackend)

	ctx := context.Background()

	var textGen services.TextGenerator
	switch strings.ToLower(cfg.LLMProvider) {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Error("Gemini API key is required when using gemini provider")
			os.Exit(1)
		}
		gemini, err := services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.ModelName, log)
		if err != nil {
			log.Error("Failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		textGen = gemini
		log.Info("Using Gemini LLM provider")
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Error("OpenAI API key is required when using openai provider")
			os.Exit(1)
		}
		textGen = services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.ModelName, log)
		log.Info("Using OpenAI LLM provider")
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider, "supported", []string{"gemini", "openai"})
		os.Exit(1)
	}

	var imageGen services.ImageGenerator
	var videoGen services.VideoGenerator
	if cfg.UseMockMedia {
		imageGen = &services.MockImageGenerator{}
		videoGen = &services.MockVideoGenerator{}
		log.Info("Using mock media providers")
	} else {
		imageGen = services.NewImagenService(cfg.GeminiAPIKey, "", log)
		videoGen = services.NewVeoService(cfg.GeminiAPIKey, "", log)
	}

	var store storage.Storage
	switch cfg.StorageBackend {
	case "sqlite":
		sqlStore, err := storage.NewSQLiteStorage(cfg.SQLitePath, log)
		if err != nil {
			log.Error("Failed to open SQLite storage", "error", err)
			os.Exit(1)
		}
		store = sqlStore
	default:
		store = storage.NewRedisStorage(cfg.RedisURL, log)
	}

	storageCtx, storageCancel := context.WithTimeout(ctx, 2*time.Minute)
	defer storageCancel()
	if err := store.Ping(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	// The job queue always runs on Redis, even with SQLite persistence.
	redisStore, ok := store.(*storage.RedisStorage)
	if !ok {
		redisStore = storage.NewRedisStorage(cfg.RedisURL, log)
		defer func() { _ = redisStore.Close() }()
	}
	genQueue := queue.NewGenerationQueue(queue.NewClient(redisStore.Client()))

	requester := generator.NewRequester(textGen, cfg.ModelName, log)
	orchestrator := generator.NewOrchestrator(store, requester, imageGen, videoGen, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	storyHandler := handlers.NewStoryHandler(store, orchestrator, genQueue, cfg.TotalRooms, log)
	mux.Handle("/v1/stories", storyHandler)
	mux.Handle("/v1/stories/", storyHandler)

	roomHandler := handlers.NewRoomHandler(store, log)
	mux.Handle("/v1/rooms/", roomHandler)

	assetHandler := handlers.NewAssetHandler(store, log)
	mux.Handle("/v1/assets/", assetHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
