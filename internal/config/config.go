// Package config loads service configuration from the environment, with a
// local .env file honored in development.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// LLMProvider selects the text generator: "gemini" or "openai".
	LLMProvider  string `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	ModelName    string `env:"MODEL_NAME"`

	// StorageBackend selects persistence: "redis" or "sqlite". The worker
	// requires Redis regardless, for the queue and story locks.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"redis"`
	RedisURL       string `env:"REDIS_URL" envDefault:"localhost:6379"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"riddle-rooms.db"`

	// UseMockMedia swaps image and video providers for deterministic
	// placeholders, so stories generate without media API keys.
	UseMockMedia bool `env:"USE_MOCK_MEDIA" envDefault:"false"`

	TotalRooms int `env:"TOTAL_ROOMS" envDefault:"3"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMProvider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (expected gemini or openai)", c.LLMProvider)
	}
	switch c.StorageBackend {
	case "redis", "sqlite":
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (expected redis or sqlite)", c.StorageBackend)
	}
	if c.TotalRooms < 1 {
		return fmt.Errorf("TOTAL_ROOMS must be at least 1, got %d", c.TotalRooms)
	}
	return nil
}

// SlogLevel maps the configured log level to slog.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
