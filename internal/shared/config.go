package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Remote    RemoteConfig    `toml:"remote"`
	Retention RetentionConfig `toml:"retention"`
	Sync      SyncConfig      `toml:"sync"`
	Server    ServerConfig    `toml:"server"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RemoteConfig contains shared-record replication settings.
// An empty BaseURL disables replication entirely.
type RemoteConfig struct {
	BaseURL             string  `toml:"base_url"`
	PollIntervalSeconds int     `toml:"poll_interval_seconds"`
	RateLimit           float64 `toml:"rate_limit"`
}

// RetentionConfig holds the cutoff date before which events and dated tasks are pruned.
type RetentionConfig struct {
	Cutoff string `toml:"cutoff"`
}

// SyncConfig contains batch re-sync settings for `calsync watch`.
type SyncConfig struct {
	Schedule  string  `toml:"schedule"`
	RateLimit float64 `toml:"rate_limit"`
}

// ServerConfig contains HTTP server settings for the record server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// PollInterval returns the remote poll interval as a [time.Duration], defaulting to 15s.
func (r RemoteConfig) PollInterval() time.Duration {
	if r.PollIntervalSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(r.PollIntervalSeconds) * time.Second
}

// CutoffDate parses the retention cutoff as a local-time date.
// Invalid or missing values fall back to the default cutoff.
func (r RetentionConfig) CutoffDate() time.Time {
	t, err := time.ParseInLocation("2006-01-02", r.Cutoff, time.Local)
	if err != nil {
		return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.Local)
	}
	return t
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
