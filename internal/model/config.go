package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// ListenAddr is the host:port the API server binds to.
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `mapstructure:"path" yaml:"path"`
}

// CacheConfig holds the in-process event cache tunables.
type CacheConfig struct {
	// MaxSize bounds the FIFO queue; the oldest entry is evicted when
	// an insert would exceed it.
	MaxSize int `mapstructure:"max_size" yaml:"max_size"`

	// ExpirationMinutes is how long a cache fill stays fresh before a
	// refresh from durable storage is attempted.
	ExpirationMinutes int `mapstructure:"expiration_minutes" yaml:"expiration_minutes"`
}

// RefreshConfig holds retry settings for cache refresh cycles.
type RefreshConfig struct {
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`

	// BaseDelayMillis is the first retry delay; it doubles each attempt.
	BaseDelayMillis int `mapstructure:"base_delay_millis" yaml:"base_delay_millis"`

	// MaxDelayMillis caps the exponential growth.
	MaxDelayMillis int `mapstructure:"max_delay_millis" yaml:"max_delay_millis"`
}

// BatchConfig holds batch-resolution tunables.
type BatchConfig struct {
	// ChunkSize is how many events are resolved per sequential chunk.
	ChunkSize int `mapstructure:"chunk_size" yaml:"chunk_size"`
}

// NotifyConfig holds outbound notification channel settings.
type NotifyConfig struct {
	// BotURL is the external endpoint batched status updates are
	// POSTed to.
	BotURL string `mapstructure:"bot_url" yaml:"bot_url"`

	// BotSecret is the bearer token for the bot endpoint.
	BotSecret string `mapstructure:"bot_secret" yaml:"bot_secret"`

	// WebhookPrefix is the only accepted webhook URL prefix; anything
	// else is rejected before any network call.
	WebhookPrefix string `mapstructure:"webhook_prefix" yaml:"webhook_prefix"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Refresh  RefreshConfig  `mapstructure:"refresh" yaml:"refresh"`
	Batch    BatchConfig    `mapstructure:"batch" yaml:"batch"`
	Notify   NotifyConfig   `mapstructure:"notify" yaml:"notify"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/jobtracker/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "jobtracker", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server:   ServerConfig{ListenAddr: ":8080"},
		Database: DatabaseConfig{Path: "jobtracker.sqlite"},
		Cache: CacheConfig{
			MaxSize:           1000,
			ExpirationMinutes: 30,
		},
		Refresh: RefreshConfig{
			MaxAttempts:     3,
			BaseDelayMillis: 500,
			MaxDelayMillis:  10000,
		},
		Batch: BatchConfig{ChunkSize: 25},
		Notify: NotifyConfig{
			WebhookPrefix: "https://discord.com/api/webhooks/",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("database.path", "jobtracker.sqlite")
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.expiration_minutes", 30)
	v.SetDefault("refresh.max_attempts", 3)
	v.SetDefault("refresh.base_delay_millis", 500)
	v.SetDefault("refresh.max_delay_millis", 10000)
	v.SetDefault("batch.chunk_size", 25)
	v.SetDefault("notify.webhook_prefix", "https://discord.com/api/webhooks/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
