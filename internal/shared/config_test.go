package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "calsync.db" {
			t.Errorf("expected database path calsync.db, got %s", config.Database.Path)
		}

		if config.Remote.BaseURL != "" {
			t.Errorf("expected replication disabled by default, got %s", config.Remote.BaseURL)
		}

		if config.Remote.PollInterval() != 15*time.Second {
			t.Errorf("expected 15s poll interval, got %v", config.Remote.PollInterval())
		}

		if config.Server.Port != 8787 {
			t.Errorf("expected server port 8787, got %d", config.Server.Port)
		}

		if config.Sync.Schedule != "@every 30m" {
			t.Errorf("expected @every 30m schedule, got %s", config.Sync.Schedule)
		}
	})

	t.Run("CutoffDate", func(t *testing.T) {
		config := DefaultConfig()
		want := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.Local)
		if !config.Retention.CutoffDate().Equal(want) {
			t.Errorf("expected cutoff %v, got %v", want, config.Retention.CutoffDate())
		}

		// An unparseable cutoff falls back to the default.
		bad := RetentionConfig{Cutoff: "whenever"}
		if !bad.CutoffDate().Equal(want) {
			t.Errorf("expected fallback cutoff %v, got %v", want, bad.CutoffDate())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[remote]
base_url = "http://records.example:8787"
poll_interval_seconds = 5
rate_limit = 1.0

[retention]
cutoff = "2025-09-01"

[sync]
schedule = "@hourly"
rate_limit = 0.5

[server]
host = "0.0.0.0"
port = 9090
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Remote.BaseURL != "http://records.example:8787" {
			t.Errorf("expected remote base url, got %s", config.Remote.BaseURL)
		}

		if config.Remote.PollInterval() != 5*time.Second {
			t.Errorf("expected 5s poll interval, got %v", config.Remote.PollInterval())
		}

		want := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.Local)
		if !config.Retention.CutoffDate().Equal(want) {
			t.Errorf("expected cutoff %v, got %v", want, config.Retention.CutoffDate())
		}

		if config.Server.Port != 9090 {
			t.Errorf("expected server port 9090, got %d", config.Server.Port)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig("/does/not/exist.toml"); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}
