package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName             string        `mapstructure:"app_name"`
	Env                 string        `mapstructure:"app_env"`
	LogLevel            string        `mapstructure:"log_level"`
	SourcesFile         string        `mapstructure:"sources_file"`
	SinksFile           string        `mapstructure:"sinks_file"`
	SiftIntervalSeconds int64         `mapstructure:"sift_interval"`
	SiftInterval        time.Duration `mapstructure:"-"`

	StorageType   string        `mapstructure:"storage_type"`
	StatePath     string        `mapstructure:"state_path"`
	RetentionDays int64         `mapstructure:"retention_days"`
	Retention     time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "feedsift")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sources_file", "./configs/sources.yaml")
	v.SetDefault("sinks_file", "./configs/sinks.yaml")
	v.SetDefault("sift_interval", 0) // seconds; 0 runs a single pass and exits
	v.SetDefault("storage_type", "file")
	v.SetDefault("state_path", "./data/dedup_state.json")
	v.SetDefault("retention_days", 7)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.SiftIntervalSeconds < 0 {
		return nil, fmt.Errorf("invalid sift_interval (must be zero or positive seconds)")
	}
	cfg.SiftInterval = time.Duration(cfg.SiftIntervalSeconds) * time.Second

	if cfg.RetentionDays <= 0 {
		return nil, fmt.Errorf("invalid retention_days (must be positive days)")
	}
	cfg.Retention = time.Duration(cfg.RetentionDays) * 24 * time.Hour

	return &cfg, nil
}
