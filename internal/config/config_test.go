package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "battle", cfg.ProgramID)
	assert.Equal(t, "store", cfg.StoreID)
	assert.Equal(t, StorageTypeMemory, cfg.StorageType)
	assert.Equal(t, time.Second, cfg.BlockTime)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.False(t, cfg.Devnet)
	assert.Empty(t, cfg.ActorDirectory)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PETBATTLE_PROGRAM_ID":      "battle-7",
		"PETBATTLE_STORAGE_TYPE":    "redis",
		"PETBATTLE_REDIS_URL":       "redis://localhost:6379/0",
		"PETBATTLE_ACTOR_DIRECTORY": "pet-1=http://pets:9000/pet-1,store=http://store:9000/handle",
		"PETBATTLE_BLOCK_TIME":      "3s",
		"PETBATTLE_PORT":            "9090",
		"PETBATTLE_DEVNET":          "true",
		"PETBATTLE_SESSION_TTL":     "90m",
		"PETBATTLE_LOG_LEVEL":       "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, "battle-7", cfg.ProgramID)
	assert.Equal(t, StorageTypeRedis, cfg.StorageType)
	assert.Equal(t, map[string]string{
		"pet-1": "http://pets:9000/pet-1",
		"store": "http://store:9000/handle",
	}, cfg.ActorDirectory)
	assert.Equal(t, 3*time.Second, cfg.BlockTime)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Devnet)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "http://127.0.0.1:9090/devnet/actors", cfg.DevnetBaseURL())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
	}{
		{"redis without url", map[string]string{"PETBATTLE_STORAGE_TYPE": "redis"}},
		{"unknown storage", map[string]string{"PETBATTLE_STORAGE_TYPE": "postgres"}},
		{"bad port", map[string]string{"PETBATTLE_PORT": "not-a-port"}},
		{"zero block time", map[string]string{"PETBATTLE_BLOCK_TIME": "0s"}},
		{"negative session ttl", map[string]string{"PETBATTLE_SESSION_TTL": "-1h"}},
		{"bad log level", map[string]string{"PETBATTLE_LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			assert.Error(t, err)
		})
	}
}
