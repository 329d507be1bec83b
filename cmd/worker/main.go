package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/riddle-rooms/internal/config"
	"github.com/jwebster45206/riddle-rooms/internal/generator"
	"github.com/jwebster45206/riddle-rooms/internal/logger"
	"github.com/jwebster45206/riddle-rooms/internal/services"
	"github.com/jwebster45206/riddle-rooms/internal/services/queue"
	"github.com/jwebster45206/riddle-rooms/internal/storage"
	"github.com/jwebster45206/riddle-rooms/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Riddle Rooms Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"llm_provider", cfg.LLMProvider)

	ctx := context.Background()

	// Storage backend
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
		redisStore := storage.NewRedisStorage(cfg.RedisURL, log)
		waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Minute)
		defer waitCancel()
		if err := redisStore.WaitForConnection(waitCtx); err != nil {
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		store = redisStore
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}()
	log.Info("Storage service initialized successfully")

	// Text generator
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

	// Media generators
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

	requester := generator.NewRequester(textGen, cfg.ModelName, log)
	orchestrator := generator.NewOrchestrator(store, requester, imageGen, videoGen, log)

	// Separate Redis client for the queue and story locks
	// (separate from storage to avoid connection conflicts)
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis client", "error", err)
		}
	}()
	log.Info("Redis connection established successfully")

	genQueue := queue.NewGenerationQueue(queue.NewClient(redisClient))

	w := worker.New(genQueue, orchestrator, redisClient, log, os.Getenv("WORKER_ID"))

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Shutdown signal received")
		w.Stop()
	}()

	if err := w.Start(); err != nil {
		log.Error("Worker exited with error", "error", err)
		os.Exit(1)
	}

	log.Info("Worker exited")
}
