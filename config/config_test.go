package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, 10*time.Minute, cfg.Match.MessageWindow)
	assert.Equal(t, 2*time.Minute, cfg.Match.UnverifiedTTL)
	assert.False(t, cfg.Match.CancelOnDissolve)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, ":8081", cfg.Connect.Addr)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MATCH_MESSAGE_WINDOW", "1m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("MATCH_CANCEL_ON_DISSOLVE", "true")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, time.Minute, cfg.Match.MessageWindow)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Match.CancelOnDissolve)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DATABASE_NAME=justdate_test\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("DATABASE_NAME") })

	cfg := Load(path)

	assert.Equal(t, "justdate_test", cfg.Mongo.Database)
}
