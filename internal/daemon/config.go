// Package daemon manages the TalkMaster daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/talkmaster-app/talkmaster/internal/domain"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Store     StoreConfig     `toml:"store"`
	Redis     RedisConfig     `toml:"redis"`
	Progress  ProgressConfig  `toml:"progress"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StoreConfig selects where progress records live. Vocabulary, review
// items, history and notifications always live in SQLite.
type StoreConfig struct {
	Backend string `toml:"backend"` // sqlite | redis | memory
}

// RedisConfig is used when Store.Backend is "redis".
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// ProgressConfig tunes the progress engine.
type ProgressConfig struct {
	Timezone     string `toml:"timezone"` // IANA name or "Local"
	QuestsPerDay int    `toml:"quests_per_day"`
	QuestSeed    int64  `toml:"quest_seed"` // 0 = clock-derived
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // console | json
}

// TelemetryConfig controls metrics export.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8417,
			CORSOrigins: []string{"*"},
		},
		Store: StoreConfig{
			Backend: BackendSQLite,
		},
		Redis: RedisConfig{
			Addr:   "127.0.0.1:6379",
			Prefix: "talkmaster:",
		},
		Progress: ProgressConfig{
			Timezone:     "Local",
			QuestsPerDay: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
	}
}

// LoadConfig reads config from ~/.talkmaster/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := ConfigPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet, use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.talkmaster/config.toml.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Validate rejects settings the daemon cannot start with.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownBackend, c.Store.Backend)
	}
	if c.Store.Backend == BackendRedis && c.Redis.Addr == "" {
		return fmt.Errorf("redis backend needs [redis] addr")
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api port %d", c.API.Port)
	}
	if c.Progress.QuestsPerDay < 0 {
		return fmt.Errorf("quests_per_day must not be negative, got %d", c.Progress.QuestsPerDay)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// Location resolves Progress.Timezone. Empty and "Local" mean the
// system zone.
func (c Config) Location() (*time.Location, error) {
	switch c.Progress.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Progress.Timezone)
	if err != nil {
		return nil, fmt.Errorf("progress timezone %q: %w", c.Progress.Timezone, err)
	}
	return loc, nil
}

// ConfigPath returns the location of config.toml.
func ConfigPath() string {
	return filepath.Join(talkmasterHome(), "config.toml")
}

// talkmasterHome returns the TalkMaster data directory.
func talkmasterHome() string {
	if env := os.Getenv("TALKMASTER_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".talkmaster")
}

// TalkmasterHome is exported for use by other packages.
func TalkmasterHome() string {
	return talkmasterHome()
}
