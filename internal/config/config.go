package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	DatabasePath   string
	JWTSecret      string
	TokenTTL       time.Duration
	BcryptCost     int
	AllowedOrigins []string

	// Background monitoring
	StatsInterval     time.Duration
	LowStockThreshold int
	LowStockCron      string
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, err
	}

	cost, err := strconv.Atoi(getEnv("BCRYPT_COST", "10"))
	if err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, err
	}

	statsInterval, err := time.ParseDuration(getEnv("STATS_INTERVAL", "30s"))
	if err != nil {
		return nil, err
	}

	threshold, err := strconv.Atoi(getEnv("LOW_STOCK_THRESHOLD", "5"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:        port,
		DatabasePath:      getEnv("DATABASE_PATH", "./invento.db"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:          ttl,
		BcryptCost:        cost,
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		StatsInterval:     statsInterval,
		LowStockThreshold: threshold,
		LowStockCron:      getEnv("LOW_STOCK_CRON", "*/5 * * * *"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
