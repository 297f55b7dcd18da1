package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the runner configuration loaded from environment variables and an optional .env file.
type Config struct {
	AppName              string        `mapstructure:"app_name"`
	Env                  string        `mapstructure:"env"`
	LogLevel             string        `mapstructure:"log_level"`
	ProfilesFile         string        `mapstructure:"profiles_file"`
	Checks               []string      `mapstructure:"checks"`
	CheckIntervalSeconds int64         `mapstructure:"check_interval"`
	CheckInterval        time.Duration `mapstructure:"-"`
	CheckTimeoutSeconds  int64         `mapstructure:"check_timeout"`
	CheckTimeout         time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and configs/.env.
func Load() (*Config, error) {
	return load("configs/.env")
}

func load(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	v := viper.New()

	v.SetDefault("app_name", "hn-contract-checks")
	v.SetDefault("env", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("profiles_file", "")
	v.SetDefault("checks", []string{}) // comma separated ids or groups, empty runs all
	v.SetDefault("check_interval", 0) // seconds, 0 runs once
	v.SetDefault("check_timeout", 120)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CheckIntervalSeconds < 0 {
		return nil, fmt.Errorf("invalid check_interval (must be zero or positive seconds)")
	}
	cfg.CheckInterval = time.Duration(cfg.CheckIntervalSeconds) * time.Second

	if cfg.CheckTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid check_timeout (must be positive seconds)")
	}
	cfg.CheckTimeout = time.Duration(cfg.CheckTimeoutSeconds) * time.Second

	return &cfg, nil
}
