package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("EVOLUTION_HOST", "http://evolution.local/")
	t.Setenv("EVOLUTION_API_KEY", "key")
	t.Setenv("EVOLUTION_INSTANCE", "lanchonete")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, GatewayEvolution, cfg.Gateway)
	assert.Equal(t, "http://evolution.local", cfg.Evolution.Host)
	assert.Equal(t, StoreFile, cfg.Storage.Backend)
	assert.Equal(t, "consent.json", cfg.Storage.ConsentFile)
	assert.Equal(t, ModeConversation, cfg.OrderMode)
	assert.Equal(t, 5, cfg.Broadcast.BatchSize)
	assert.Equal(t, 10*time.Second, cfg.Broadcast.BatchDelay)
	assert.Equal(t, 50*time.Millisecond, cfg.Broadcast.PerContact)
	assert.Equal(t, 5*time.Second, cfg.Broadcast.SafetyBuffer)
	assert.Equal(t, 30*time.Minute, cfg.Broadcast.MaxWait)
	assert.True(t, cfg.Printer.Simulation)
	assert.Equal(t, 40, cfg.Printer.Width)
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ORDER_MODE=single\nBROADCAST_BATCH_SIZE=10\n"), 0o644))
	// godotenv does not override existing variables; make sure ours are unset
	t.Setenv("ORDER_MODE", "")
	require.NoError(t, os.Unsetenv("ORDER_MODE"))
	t.Setenv("BROADCAST_BATCH_SIZE", "")
	require.NoError(t, os.Unsetenv("BROADCAST_BATCH_SIZE"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ModeSingleMessage, cfg.OrderMode)
	assert.Equal(t, 10, cfg.Broadcast.BatchSize)
}

func TestValidate_MissingEvolutionSettings(t *testing.T) {
	cfg := &Config{
		Gateway:   GatewayEvolution,
		OrderMode: ModeConversation,
		Storage:   StorageConfig{Backend: StoreFile},
		Broadcast: BroadcastConfig{BatchSize: 5},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EVOLUTION_HOST")
	assert.Contains(t, err.Error(), "EVOLUTION_API_KEY")
	assert.Contains(t, err.Error(), "EVOLUTION_INSTANCE")
}

func TestValidate_Combinations(t *testing.T) {
	base := func() *Config {
		return &Config{
			Gateway:   GatewayTwilio,
			Twilio:    TwilioConfig{AccountSID: "AC1", AuthToken: "tok", WhatsAppFrom: "whatsapp:+1415"},
			OrderMode: ModeSingleMessage,
			Storage:   StorageConfig{Backend: StoreMemory},
			Broadcast: BroadcastConfig{BatchSize: 1},
		}
	}
	assert.NoError(t, base().Validate())

	cfg := base()
	cfg.Storage.Backend = StorePostgres
	assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")

	cfg = base()
	cfg.OrderMode = "both"
	assert.ErrorContains(t, cfg.Validate(), "ORDER_MODE")

	cfg = base()
	cfg.Gateway = "telegram"
	assert.ErrorContains(t, cfg.Validate(), "MESSAGE_GATEWAY")

	cfg = base()
	cfg.Broadcast.BatchSize = 0
	assert.ErrorContains(t, cfg.Validate(), "BATCH_SIZE")
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "DEBUG"}).SlogLevel())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "warning"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: ""}).SlogLevel())
}
