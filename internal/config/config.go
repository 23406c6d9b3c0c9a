// Package config loads service configuration from the environment.
//
// The configuration is constructed once in main and passed down explicitly;
// nothing in this package memoizes or mutates process-wide state.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service.
type Config struct {
	ServerAddr  string
	MetricsAddr string

	PostgresDSN string
	UseMemory   bool

	JWTSecret string
	TokenTTL  time.Duration

	// ModelEndpoint is the external prediction model URL. Empty selects
	// the deterministic stub engine.
	ModelEndpoint string

	BinanceBaseURL string
	BinanceWSURL   string

	// Cron specs for background jobs.
	CandleRefreshSpec string
	RetrainSpec       string

	Debug bool
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddr:        getEnv("SERVER_ADDR", ":8000"),
		MetricsAddr:       getEnv("METRICS_ADDR", ":9090"),
		PostgresDSN:       getEnv("POSTGRES_DSN", ""),
		UseMemory:         getEnvBool("USE_MEMORY", false),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		ModelEndpoint:     getEnv("MODEL_ENDPOINT", ""),
		BinanceBaseURL:    getEnv("BINANCE_BASE_URL", "https://api.binance.com"),
		BinanceWSURL:      getEnv("BINANCE_WS_URL", "wss://stream.binance.com:9443/ws"),
		CandleRefreshSpec: getEnv("CANDLE_REFRESH_SPEC", "@hourly"),
		RetrainSpec:       getEnv("RETRAIN_SPEC", "@daily"),
		Debug:             getEnvBool("DEBUG", false),
	}

	ttlMinutes, err := strconv.Atoi(getEnv("ACCESS_TOKEN_EXPIRE_MINUTES", "1440"))
	if err != nil {
		return nil, fmt.Errorf("parse ACCESS_TOKEN_EXPIRE_MINUTES: %w", err)
	}
	cfg.TokenTTL = time.Duration(ttlMinutes) * time.Minute

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if !cfg.UseMemory && cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required unless USE_MEMORY=true")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
