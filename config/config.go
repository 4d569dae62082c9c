package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	UserID           string `yaml:"user_id"`
	OutputDir        string `yaml:"output_dir"`
	DBPath           string `yaml:"db_path"`
	FetchTimeoutSecs int    `yaml:"fetch_timeout_secs"`
	RequestDelaySecs int    `yaml:"request_delay_secs"`
	SyncTime         string `yaml:"sync_time"`
	Timezone         string `yaml:"timezone"`
	TelegramToken    string `yaml:"telegram_token"`
	TelegramChatID   int64  `yaml:"telegram_chat_id"`
	LogLevel         string `yaml:"log_level"`
}

// syncTimeRegex validates HH:MM format with proper ranges.
var syncTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// Load reads configuration from a YAML file and applies defaults.
// A missing file is not an error: every setting has a default or can
// come from flags and the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if yerr := yaml.Unmarshal(data, cfg); yerr != nil {
			return nil, fmt.Errorf("parse config yaml: %w", yerr)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	applyDefaults(cfg)
	applyEnvironmentOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// GetConfigPath returns the config file path from environment or default.
func GetConfigPath() string {
	if path := os.Getenv("ATCODER_ARCHIVER_CONFIG"); path != "" {
		return path
	}
	return "./config.yaml"
}

func applyDefaults(cfg *Config) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./atcoder-submissions"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./atcoder-archiver.db"
	}
	if cfg.FetchTimeoutSecs == 0 {
		cfg.FetchTimeoutSecs = 10
	}
	if cfg.RequestDelaySecs == 0 {
		cfg.RequestDelaySecs = 3
	}
	if cfg.SyncTime == "" {
		cfg.SyncTime = "06:00"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func applyEnvironmentOverrides(cfg *Config) {
	if userID := os.Getenv("ATCODER_USER_ID"); userID != "" {
		cfg.UserID = userID
	}
	if dbPath := os.Getenv("ATCODER_ARCHIVER_DB"); dbPath != "" {
		cfg.DBPath = dbPath
	}
}

func validate(cfg *Config) error {
	if cfg.FetchTimeoutSecs < 0 {
		return fmt.Errorf("fetch_timeout_secs must not be negative, got %d", cfg.FetchTimeoutSecs)
	}
	if cfg.RequestDelaySecs < 0 {
		return fmt.Errorf("request_delay_secs must not be negative, got %d", cfg.RequestDelaySecs)
	}
	if !syncTimeRegex.MatchString(cfg.SyncTime) {
		return fmt.Errorf("sync_time must be in HH:MM format (00:00-23:59), got %q", cfg.SyncTime)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return fmt.Errorf("telegram_chat_id is required when telegram_token is set")
	}
	return nil
}
