package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port      int
	LogLevel  string
	LogFormat string

	// StoreDriver is postgres, sqlite or none.
	StoreDriver string
	DatabaseURL string
	SQLitePath  string

	// LevelFile is an extra level loaded next to the embedded ones.
	LevelFile string

	TelemetryEnabled bool
}

func Load() *Config {
	return &Config{
		Port:             getEnvInt("PORT", 8080),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		StoreDriver:      getEnv("STORE_DRIVER", "sqlite"),
		DatabaseURL:      getEnv("DATABASE_URL", "postgres://localhost:5432/horsingaround?sslmode=disable"),
		SQLitePath:       getEnv("SQLITE_PATH", "horsingaround.db"),
		LevelFile:        getEnv("LEVEL_FILE", ""),
		TelemetryEnabled: getEnvBool("TELEMETRY_ENABLED", false),
	}
}

// StoreDSN returns the connection string for the configured store driver.
func (c *Config) StoreDSN() string {
	if c.StoreDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.DatabaseURL
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
