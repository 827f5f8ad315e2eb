package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database (optional; run history is skipped when empty)
	DatabaseURL    string
	MigrateOnStart bool

	// Redis (optional; catalog falls back to defaults and snapshots are not cached)
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation
	BoardPresetsPath     string
	DefaultSeed          uint32 // 0 draws a fresh seed per run
	TickHz               int
	BroadcastHz          int
	SessionExpiryMinutes int
	ExpiryCheckSeconds   int
	SnapshotTTLMinutes   int
	MaxSessions          int

	// Security
	JWTSecret           string
	HostTokenTTLMinutes int
	AdminTokenHash      string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation
		BoardPresetsPath:     getEnv("BOARD_PRESETS_PATH", "config/boards.yaml"),
		DefaultSeed:          getEnvUint32("DEFAULT_SEED", 0),
		TickHz:               getEnvInt("TICK_HZ", 60),
		BroadcastHz:          getEnvInt("BROADCAST_HZ", 20),
		SessionExpiryMinutes: getEnvInt("SESSION_EXPIRY_MINUTES", 30),
		ExpiryCheckSeconds:   getEnvInt("EXPIRY_CHECK_SECONDS", 60),
		SnapshotTTLMinutes:   getEnvInt("SNAPSHOT_TTL_MINUTES", 60),
		MaxSessions:          getEnvInt("MAX_SESSIONS", 200),

		// Security
		JWTSecret:           getEnv("JWT_SECRET", "change-me-in-production"),
		HostTokenTTLMinutes: getEnvInt("HOST_TOKEN_TTL_MINUTES", 120),
		AdminTokenHash:      getEnv("ADMIN_TOKEN_HASH", ""),
	}
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvUint32(key string, defaultValue uint32) uint32 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			return uint32(v)
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
