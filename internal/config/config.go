package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string

	// Ingestion tuning
	IngestWorkers   int
	AnalyzerTimeout time.Duration
	AnalyzerWorkDir string

	// Bounded retries on optimistic-write conflicts
	TransitionRetries uint

	// Optional webhook endpoint for pipeline events
	NotifyWebhookURL string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Port:              getEnv("PORT", "8080"),
		IngestWorkers:     getEnvInt("INGEST_WORKERS", 4),
		AnalyzerTimeout:   getEnvDuration("ANALYZER_TIMEOUT", 30*time.Second),
		AnalyzerWorkDir:   getEnv("ANALYZER_WORKDIR", "./uploads"),
		TransitionRetries: uint(getEnvInt("TRANSITION_RETRIES", 3)),
		NotifyWebhookURL:  os.Getenv("NOTIFY_WEBHOOK_URL"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %d", key, value, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
		log.Printf("Warning: invalid %s=%q, using %s", key, value, fallback)
	}
	return fallback
}
