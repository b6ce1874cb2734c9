package config

import (
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config carries everything the server reads from the environment. A .env
// file in the working directory is loaded automatically.
type Config struct {
	HTTPPort    string
	DBDriver    string // "sqlite3" or "pgx"; empty disables the results store
	DBDSN       string
	NATSURL     string // empty disables event publishing
	IdleTTL     time.Duration
	FinishedTTL time.Duration
}

// Load reads the configuration, applying defaults for everything unset.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DBDriver:    getEnv("DB_DRIVER", "sqlite3"),
		DBDSN:       getEnv("DB_DSN", "./boardgame.db"),
		NATSURL:     getEnv("NATS_URL", ""),
		IdleTTL:     10 * time.Minute,
		FinishedTTL: 5 * time.Minute,
	}

	var err error
	if cfg.IdleTTL, err = durationEnv("GAME_IDLE_TTL", cfg.IdleTTL); err != nil {
		return nil, err
	}
	if cfg.FinishedTTL, err = durationEnv("GAME_FINISHED_TTL", cfg.FinishedTTL); err != nil {
		return nil, err
	}

	switch cfg.DBDriver {
	case "", "sqlite3", "pgx":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
