package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/contestsync/go/clients/contest_api_client"
	"github.com/mcdev12/contestsync/go/internal/contests"
	"github.com/mcdev12/contestsync/go/internal/events"
	"github.com/mcdev12/contestsync/go/internal/kvstore"
)

const (
	StorageBolt   = "bolt"
	StorageRedis  = "redis"
	StorageMemory = "memory"

	defaultUserID     = "200095"
	defaultConfigPath = "contestsync.yaml"
)

// Config is read from an optional YAML file and then overlaid with any
// CONTESTSYNC_* environment variables that are set.
type Config struct {
	API struct {
		BaseURL     string        `yaml:"base_url" env:"CONTESTSYNC_API_URL"`
		UserID      string        `yaml:"user_id" env:"CONTESTSYNC_USER_ID"`
		Timeout     time.Duration `yaml:"timeout" env:"CONTESTSYNC_API_TIMEOUT"`
		MaxRetries  uint64        `yaml:"max_retries" env:"CONTESTSYNC_API_MAX_RETRIES"`
		RetryDelay  time.Duration `yaml:"retry_delay" env:"CONTESTSYNC_API_RETRY_DELAY"`
		RefreshEach time.Duration `yaml:"detail_refresh" env:"CONTESTSYNC_DETAIL_REFRESH"`
	} `yaml:"api"`

	Storage struct {
		Backend       string `yaml:"backend" env:"CONTESTSYNC_STORAGE"`
		BoltPath      string `yaml:"bolt_path" env:"CONTESTSYNC_BOLT_PATH"`
		RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
		RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
		RedisPrefix   string `yaml:"redis_prefix" env:"CONTESTSYNC_REDIS_PREFIX"`
	} `yaml:"storage"`

	Events struct {
		NATSURL       string `yaml:"nats_url" env:"NATS_URL"`
		SubjectPrefix string `yaml:"subject_prefix" env:"CONTESTSYNC_SUBJECT_PREFIX"`
	} `yaml:"events"`

	MetricsPort int    `yaml:"metrics_port" env:"METRICS_PORT"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = contest_api_client.DefaultBaseURL
	cfg.API.UserID = defaultUserID
	cfg.API.Timeout = 30 * time.Second
	cfg.API.MaxRetries = 3
	cfg.API.RetryDelay = 500 * time.Millisecond
	cfg.API.RefreshEach = contests.DetailRefreshInterval
	cfg.Storage.Backend = StorageBolt
	cfg.Storage.BoltPath = "contestsync.db"
	cfg.Storage.RedisAddr = "localhost:6379"
	cfg.Storage.RedisPrefix = kvstore.DefaultKeyPrefix
	cfg.Events.SubjectPrefix = events.DefaultNATSConfig().SubjectPrefix
	cfg.LogLevel = "info"
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadConfig builds the configuration from defaults, then the YAML file at
// path (a missing file is not an error), then the environment.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base_url is required")
	}
	if c.API.UserID == "" {
		return fmt.Errorf("api user_id is required")
	}
	if c.API.RefreshEach <= 0 {
		return fmt.Errorf("invalid detail_refresh: %s (must be positive)", c.API.RefreshEach)
	}

	switch c.Storage.Backend {
	case StorageBolt:
		if c.Storage.BoltPath == "" {
			return fmt.Errorf("storage bolt_path is required for the bolt backend")
		}
	case StorageRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("storage redis_addr is required for the redis backend")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend %q (want %s, %s or %s)",
			c.Storage.Backend, StorageBolt, StorageRedis, StorageMemory)
	}

	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid METRICS_PORT: %d (must be 0-65535)", c.MetricsPort)
	}
	return nil
}
