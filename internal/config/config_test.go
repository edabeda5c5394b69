package config

import (
	"os"
	"testing"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/paths"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Data.SourceDir != "source_data" {
		t.Errorf("Data.SourceDir = %q, want %q", cfg.Data.SourceDir, "source_data")
	}
	if cfg.Sources.RegistryPath != "sources.toml" {
		t.Errorf("Sources.RegistryPath = %q, want %q", cfg.Sources.RegistryPath, "sources.toml")
	}
	if cfg.Sources.Concurrency <= 0 {
		t.Error("Sources.Concurrency should be positive")
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 8377 {
		t.Errorf("Server.Port = %d, want 8377", cfg.Server.Port)
	}
	if cfg.Server.AuthRequired {
		t.Error("Server.AuthRequired should be false by default")
	}
	if cfg.Server.WatchDebounceMs != 500 {
		t.Errorf("Server.WatchDebounceMs = %d, want 500", cfg.Server.WatchDebounceMs)
	}
	if !cfg.Search.Enabled {
		t.Error("Search should be enabled by default")
	}
	if cfg.Search.DefaultLimit <= 0 || cfg.Search.MaxLimit < cfg.Search.DefaultLimit {
		t.Errorf("Search limits = %d/%d, want positive default below max",
			cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	}
	if cfg.Budget.MaxResults <= 0 {
		t.Error("Budget.MaxResults should be positive")
	}
	if cfg.Budget.MaxTreeDepth <= 0 {
		t.Error("Budget.MaxTreeDepth should be positive")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "human" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "human")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{"valid default", func(c *Config) {}, ""},
		{"unsupported version", func(c *Config) { c.Version = 99 }, "version"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"negative debounce", func(c *Config) { c.Server.WatchDebounceMs = -1 }, "server.watchDebounceMs"},
		{"zero timeout", func(c *Config) { c.Sources.TimeoutMs = 0 }, "sources.timeoutMs"},
		{"zero concurrency", func(c *Config) { c.Sources.Concurrency = 0 }, "sources.concurrency"},
		{"negative retries", func(c *Config) { c.Sources.Retries = -1 }, "sources.retries"},
		{"zero default limit", func(c *Config) { c.Search.DefaultLimit = 0 }, "search.defaultLimit"},
		{"max limit below default", func(c *Config) { c.Search.MaxLimit = 5 }, "search.maxLimit"},
		{"zero max results", func(c *Config) { c.Budget.MaxResults = 0 }, "budget.maxResults"},
		{"zero tree depth", func(c *Config) { c.Budget.MaxTreeDepth = 0 }, "budget.maxTreeDepth"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() returned unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("Validate() should fail for %s", tt.name)
			}
			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Validate() error type = %T, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{
		Field:   "server.port",
		Message: "port must be between 1 and 65535",
	}

	got := err.Error()
	want := "config error in field 'server.port': port must be between 1 and 65535"

	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestLoadConfig_Default(t *testing.T) {
	// No config file anywhere: defaults apply
	tmpDir := t.TempDir()

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	defaults := DefaultConfig()
	if cfg.Version != defaults.Version {
		t.Errorf("Version = %d, want %d", cfg.Version, defaults.Version)
	}
	if cfg.Server.Port != defaults.Server.Port {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, defaults.Server.Port)
	}
	if cfg.Data.SourceDir != defaults.Data.SourceDir {
		t.Errorf("Data.SourceDir = %q, want %q", cfg.Data.SourceDir, defaults.Data.SourceDir)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	if _, err := paths.EnsureDataDir(tmpDir); err != nil {
		t.Fatalf("Failed to create data dir: %v", err)
	}

	configContent := `{
		"version": 1,
		"server": {"port": 9000, "authRequired": true},
		"logging": {"level": "debug"}
	}`
	if err := os.WriteFile(paths.ConfigPath(tmpDir), []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if !cfg.Server.AuthRequired {
		t.Error("Server.AuthRequired should be true per config")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}

	// Keys the file omits keep their defaults
	if cfg.Data.SourceDir != "source_data" {
		t.Errorf("Data.SourceDir = %q, want default %q", cfg.Data.SourceDir, "source_data")
	}
	if cfg.Search.DefaultLimit != 20 {
		t.Errorf("Search.DefaultLimit = %d, want default 20", cfg.Search.DefaultLimit)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if _, err := paths.EnsureDataDir(tmpDir); err != nil {
		t.Fatalf("Failed to create data dir: %v", err)
	}
	if err := os.WriteFile(paths.ConfigPath(tmpDir), []byte("{ invalid json }"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := LoadConfig(tmpDir); err == nil {
		t.Error("LoadConfig() should return error for invalid JSON")
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("MODELDOCS_SERVER_PORT", "9999")
	t.Setenv("MODELDOCS_LOGGING_LEVEL", "debug")

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	// Overrides apply even without a config file
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 (from env)", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q (from env)", cfg.Logging.Level, "debug")
	}
}

func TestLoadConfig_EnvBeatsFile(t *testing.T) {
	tmpDir := t.TempDir()
	if _, err := paths.EnsureDataDir(tmpDir); err != nil {
		t.Fatalf("Failed to create data dir: %v", err)
	}
	configContent := `{"version": 1, "server": {"port": 9000}}`
	if err := os.WriteFile(paths.ConfigPath(tmpDir), []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("MODELDOCS_SERVER_PORT", "9999")

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 (env over file)", cfg.Server.Port)
	}
}

func TestConfig_Save(t *testing.T) {
	// Save creates the data directory itself
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Budget.MaxResults = 42

	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(paths.ConfigPath(tmpDir)); err != nil {
		t.Fatalf("Config file was not created: %v", err)
	}

	loaded, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() after save error = %v", err)
	}
	if loaded.Budget.MaxResults != 42 {
		t.Errorf("Loaded Budget.MaxResults = %d, want 42", loaded.Budget.MaxResults)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("Saved config should validate, got %v", err)
	}
}
