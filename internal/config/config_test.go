package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("TICK_HZ", "")
	t.Setenv("DEFAULT_SEED", "")
	t.Setenv("MIGRATE_ON_START", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60, cfg.TickHz)
	assert.Equal(t, uint32(0), cfg.DefaultSeed)
	assert.False(t, cfg.MigrateOnStart)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DEFAULT_SEED", "42")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("BROADCAST_HZ", "not-a-number")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, uint32(42), cfg.DefaultSeed)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, 20, cfg.BroadcastHz, "bad ints fall back to the default")
}

func TestGetEnvUint32RejectsOverflow(t *testing.T) {
	t.Setenv("SEED_X", "4294967296")
	assert.Equal(t, uint32(7), getEnvUint32("SEED_X", 7))
}
