package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents application configuration
type Config struct {
	Store         StoreConfig       `mapstructure:"store"`
	Source        SourceConfig      `mapstructure:"source"`
	Server        ServerConfig      `mapstructure:"server"`
	Log           LogConfig         `mapstructure:"log"`
	Anniversaries map[string]string `mapstructure:"anniversaries"`
}

// StoreConfig represents the persistent schedule store
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// SourceConfig represents the remote schedule source
type SourceConfig struct {
	URL      string `mapstructure:"url"`
	Timeout  string `mapstructure:"timeout"`
	CacheTTL string `mapstructure:"cache_ttl"`
}

// ServerConfig represents the HTTP query surface
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.cn-calendar")
		v.AddConfigPath("/etc/cn-calendar")
	}

	v.SetDefault("store.path", "cn-calendar.db")
	v.SetDefault("server.addr", ":8080")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Source.URL == "" {
		return fmt.Errorf("source.url is required")
	}
	if c.Source.Timeout != "" {
		if _, err := time.ParseDuration(c.Source.Timeout); err != nil {
			return fmt.Errorf("source.timeout is not a duration: %w", err)
		}
	}
	if c.Source.CacheTTL != "" {
		if _, err := time.ParseDuration(c.Source.CacheTTL); err != nil {
			return fmt.Errorf("source.cache_ttl is not a duration: %w", err)
		}
	}
	return nil
}

// GetTimeout returns the remote fetch timeout duration
func (c *SourceConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 10 * time.Second
	}
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return duration
}

// GetCacheTTL returns cache TTL duration
func (c *SourceConfig) GetCacheTTL() time.Duration {
	if c.CacheTTL == "" {
		return 24 * time.Hour
	}
	duration, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return duration
}
