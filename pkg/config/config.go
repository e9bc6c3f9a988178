package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORS            bool          `yaml:"cors"`
		RateLimit       struct {
			Enabled bool    `yaml:"enabled"`
			RPS     float64 `yaml:"rps"`
			Burst   float64 `yaml:"burst"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host           string        `yaml:"host"`
		Port           int           `yaml:"port"`
		Database       string        `yaml:"database"`
		User           string        `yaml:"user"`
		Password       string        `yaml:"password"`
		Table          string        `yaml:"table"`
		DialTimeout    time.Duration `yaml:"dial_timeout"`
		ReadTimeout    time.Duration `yaml:"read_timeout"`
		CommandTimeout time.Duration `yaml:"command_timeout"`
		MaxOpenConns   int           `yaml:"max_open_conns"`
		MaxIdleConns   int           `yaml:"max_idle_conns"`
	} `yaml:"clickhouse"`
	Limits struct {
		MaxLimit       int `yaml:"max_limit"`
		CandlesDefault int `yaml:"candles_default"`
		SymbolsDefault int `yaml:"symbols_default"`
		DefaultTfMin   int `yaml:"default_tf_min"`
	} `yaml:"limits"`
	Replay struct {
		DefaultStepSeconds int `yaml:"default_step_seconds"`
		MinStepSeconds     int `yaml:"min_step_seconds"`
		MaxStepSeconds     int `yaml:"max_step_seconds"`
		HistoryLimit       int `yaml:"history_limit"`
	} `yaml:"replay"`
	Cache struct {
		Enabled bool          `yaml:"enabled"`
		Backend string        `yaml:"backend"` // memory or redis
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.ClickHouse.Port = p
		}
	}
	if v := os.Getenv("CLICKHOUSE_USER"); v != "" {
		c.ClickHouse.User = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.ClickHouse.Table == "" {
		c.ClickHouse.Table = "candles"
	}
	if c.ClickHouse.DialTimeout == 0 {
		c.ClickHouse.DialTimeout = 5 * time.Second
	}
	if c.ClickHouse.ReadTimeout == 0 {
		c.ClickHouse.ReadTimeout = 30 * time.Second
	}
	if c.ClickHouse.CommandTimeout == 0 {
		c.ClickHouse.CommandTimeout = 30 * time.Second
	}
	if c.ClickHouse.MaxOpenConns == 0 {
		c.ClickHouse.MaxOpenConns = 10
	}
	if c.ClickHouse.MaxIdleConns == 0 {
		c.ClickHouse.MaxIdleConns = 5
	}
	if c.Limits.MaxLimit == 0 {
		c.Limits.MaxLimit = 5000
	}
	if c.Limits.CandlesDefault == 0 {
		c.Limits.CandlesDefault = 200
	}
	if c.Limits.SymbolsDefault == 0 {
		c.Limits.SymbolsDefault = 100
	}
	if c.Limits.DefaultTfMin == 0 {
		c.Limits.DefaultTfMin = 5
	}
	if c.Replay.DefaultStepSeconds == 0 {
		c.Replay.DefaultStepSeconds = 15
	}
	if c.Replay.MinStepSeconds == 0 {
		c.Replay.MinStepSeconds = 1
	}
	if c.Replay.MaxStepSeconds == 0 {
		c.Replay.MaxStepSeconds = 60
	}
	if c.Replay.HistoryLimit == 0 {
		c.Replay.HistoryLimit = 100000
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 30 * time.Second
	}
	if c.Cache.Redis.Host == "" {
		c.Cache.Redis.Host = "localhost"
	}
	if c.Cache.Redis.Port == 0 {
		c.Cache.Redis.Port = 6379
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	if c.ClickHouse.Database == "" {
		return fmt.Errorf("clickhouse.database is required")
	}
	if c.Limits.MaxLimit < 1 {
		return fmt.Errorf("limits.max_limit must be positive")
	}
	if c.Limits.CandlesDefault > c.Limits.MaxLimit || c.Limits.SymbolsDefault > c.Limits.MaxLimit {
		return fmt.Errorf("limit defaults must not exceed limits.max_limit")
	}
	if c.Replay.MinStepSeconds < 1 {
		return fmt.Errorf("replay.min_step_seconds must be positive")
	}
	if c.Replay.MaxStepSeconds < c.Replay.MinStepSeconds {
		return fmt.Errorf("replay.max_step_seconds must be >= replay.min_step_seconds")
	}
	if c.Replay.DefaultStepSeconds < c.Replay.MinStepSeconds || c.Replay.DefaultStepSeconds > c.Replay.MaxStepSeconds {
		return fmt.Errorf("replay.default_step_seconds must be within [min, max]")
	}
	if c.Cache.Enabled && c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	return nil
}
