package daemon

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkmaster-app/talkmaster/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "127.0.0.1", cfg.API.Host)
	assert.Equal(t, 8417, cfg.API.Port)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "talkmaster:", cfg.Redis.Prefix)
	assert.Equal(t, "Local", cfg.Progress.Timezone)
	assert.Equal(t, 3, cfg.Progress.QuestsPerDay)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TALKMASTER_HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TALKMASTER_HOME", home)
	toml := `
[api]
port = 9000

[store]
backend = "redis"

[redis]
addr = "cache:6379"

[progress]
timezone = "Asia/Tokyo"
`
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte(toml), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, "127.0.0.1", cfg.API.Host, "unset keys keep defaults")
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}

func TestLoadConfig_UnknownBackend(t *testing.T) {
	home := t.TempDir()
	t.Setenv("TALKMASTER_HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte("[store]\nbackend = \"cassandra\"\n"), 0600))

	_, err := LoadConfig()
	assert.ErrorIs(t, err, domain.ErrUnknownBackend)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("TALKMASTER_HOME", filepath.Join(t.TempDir(), "nested"))

	cfg := DefaultConfig()
	cfg.Store.Backend = BackendMemory
	cfg.Logging.Format = "json"
	require.NoError(t, SaveConfig(cfg))

	got, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad timezone", func(c *Config) { c.Progress.Timezone = "Mars/Olympus" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad port", func(c *Config) { c.API.Port = 70000 }},
		{"negative quests", func(c *Config) { c.Progress.QuestsPerDay = -1 }},
		{"redis without addr", func(c *Config) { c.Store.Backend = BackendRedis; c.Redis.Addr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("component", "test").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
	assert.Contains(t, buf.String(), `"component":"test"`)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	level, err = ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
