package config

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/logging"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/paths"
)

// CurrentVersion is the config schema version written by this build.
const CurrentVersion = 1

// Config represents the complete modeldocs configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Data    DataConfig    `json:"data" mapstructure:"data"`
	Sources SourcesConfig `json:"sources" mapstructure:"sources"`
	Server  ServerConfig  `json:"server" mapstructure:"server"`
	Search  SearchConfig  `json:"search" mapstructure:"search"`
	Budget  BudgetConfig  `json:"budget" mapstructure:"budget"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// DataConfig locates model input files. The data directory itself is not
// configurable here because the config file lives inside it; set
// MODELDOCS_DATA_DIR to relocate it.
type DataConfig struct {
	SourceDir string `json:"sourceDir" mapstructure:"sourceDir"`
	InputPath string `json:"inputPath" mapstructure:"inputPath"`
}

// SourcesConfig contains fetch settings. The dependency registry itself lives
// in sources.toml at the workspace root.
type SourcesConfig struct {
	RegistryPath string `json:"registryPath" mapstructure:"registryPath"`
	TimeoutMs    int    `json:"timeoutMs" mapstructure:"timeoutMs"`
	Concurrency  int    `json:"concurrency" mapstructure:"concurrency"`
	Retries      int    `json:"retries" mapstructure:"retries"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string `json:"host" mapstructure:"host"`
	Port            int    `json:"port" mapstructure:"port"`
	AuthRequired    bool   `json:"authRequired" mapstructure:"authRequired"`
	WatchDebounceMs int    `json:"watchDebounceMs" mapstructure:"watchDebounceMs"`
}

// SearchConfig contains full-text search configuration
type SearchConfig struct {
	Enabled      bool `json:"enabled" mapstructure:"enabled"`
	DefaultLimit int  `json:"defaultLimit" mapstructure:"defaultLimit"`
	MaxLimit     int  `json:"maxLimit" mapstructure:"maxLimit"`
}

// BudgetConfig contains response budget configuration
type BudgetConfig struct {
	MaxResults    int `json:"maxResults" mapstructure:"maxResults"`
	MaxTreeDepth  int `json:"maxTreeDepth" mapstructure:"maxTreeDepth"`
	MaxDrilldowns int `json:"maxDrilldowns" mapstructure:"maxDrilldowns"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Data: DataConfig{
			SourceDir: paths.SourceDataDirName,
			InputPath: "",
		},
		Sources: SourcesConfig{
			RegistryPath: paths.SourcesFile,
			TimeoutMs:    30000,
			Concurrency:  4,
			Retries:      2,
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8377,
			AuthRequired:    false,
			WatchDebounceMs: 500,
		},
		Search: SearchConfig{
			Enabled:      true,
			DefaultLimit: 20,
			MaxLimit:     100,
		},
		Budget: BudgetConfig{
			MaxResults:    200,
			MaxTreeDepth:  20,
			MaxDrilldowns: 5,
		},
		Logging: LoggingConfig{
			Format: string(logging.HumanFormat),
			Level:  string(logging.InfoLevel),
		},
	}
}

// LoadConfig loads configuration from .modeldocs/config.json. A missing file
// is not an error: defaults apply, and MODELDOCS_* environment variables
// override individual keys either way (MODELDOCS_SERVER_PORT, and so on).
func LoadConfig(workspaceRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(paths.DataDir(workspaceRoot))

	v.SetEnvPrefix("MODELDOCS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers every key with viper. Environment overrides only
// apply to keys viper already knows about, so the list must stay complete.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("version", defaults.Version)
	v.SetDefault("data.sourceDir", defaults.Data.SourceDir)
	v.SetDefault("data.inputPath", defaults.Data.InputPath)
	v.SetDefault("sources.registryPath", defaults.Sources.RegistryPath)
	v.SetDefault("sources.timeoutMs", defaults.Sources.TimeoutMs)
	v.SetDefault("sources.concurrency", defaults.Sources.Concurrency)
	v.SetDefault("sources.retries", defaults.Sources.Retries)
	v.SetDefault("server.host", defaults.Server.Host)
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("server.authRequired", defaults.Server.AuthRequired)
	v.SetDefault("server.watchDebounceMs", defaults.Server.WatchDebounceMs)
	v.SetDefault("search.enabled", defaults.Search.Enabled)
	v.SetDefault("search.defaultLimit", defaults.Search.DefaultLimit)
	v.SetDefault("search.maxLimit", defaults.Search.MaxLimit)
	v.SetDefault("budget.maxResults", defaults.Budget.MaxResults)
	v.SetDefault("budget.maxTreeDepth", defaults.Budget.MaxTreeDepth)
	v.SetDefault("budget.maxDrilldowns", defaults.Budget.MaxDrilldowns)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)
}

// Save writes the configuration to .modeldocs/config.json, creating the data
// directory if needed.
func (c *Config) Save(workspaceRoot string) error {
	if _, err := paths.EnsureDataDir(workspaceRoot); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	return os.WriteFile(paths.ConfigPath(workspaceRoot), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "port must be between 1 and 65535"}
	}
	if c.Server.WatchDebounceMs < 0 {
		return &ConfigError{Field: "server.watchDebounceMs", Message: "debounce must not be negative"}
	}
	if c.Sources.TimeoutMs < 1 {
		return &ConfigError{Field: "sources.timeoutMs", Message: "timeout must be positive"}
	}
	if c.Sources.Concurrency < 1 {
		return &ConfigError{Field: "sources.concurrency", Message: "concurrency must be positive"}
	}
	if c.Sources.Retries < 0 {
		return &ConfigError{Field: "sources.retries", Message: "retries must not be negative"}
	}
	if c.Search.DefaultLimit < 1 {
		return &ConfigError{Field: "search.defaultLimit", Message: "limit must be positive"}
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		return &ConfigError{Field: "search.maxLimit", Message: "max limit must not be below the default limit"}
	}
	if c.Budget.MaxResults < 1 {
		return &ConfigError{Field: "budget.maxResults", Message: "max results must be positive"}
	}
	if c.Budget.MaxTreeDepth < 1 {
		return &ConfigError{Field: "budget.maxTreeDepth", Message: "max tree depth must be positive"}
	}
	if c.Budget.MaxDrilldowns < 0 {
		return &ConfigError{Field: "budget.maxDrilldowns", Message: "max drilldowns must not be negative"}
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return &ConfigError{Field: "logging.level", Message: err.Error()}
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return &ConfigError{Field: "logging.format", Message: err.Error()}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
