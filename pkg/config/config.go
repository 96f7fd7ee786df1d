package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"volscan/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Bybit struct {
		BaseURL        string        `yaml:"base_url"`
		Category       string        `yaml:"category"`
		QuoteSuffix    string        `yaml:"quote_suffix"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"bybit"`
	Scanner struct {
		Window           time.Duration `yaml:"window"`
		Retention        time.Duration `yaml:"retention"`
		MinTurnover      float64       `yaml:"min_turnover"`
		TieEpsilon       float64       `yaml:"tie_epsilon"`
		HistoryRetention time.Duration `yaml:"history_retention"`
	} `yaml:"scanner"`
	Backend struct {
		Type string `yaml:"type"` // "memory" or "kafka"
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
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

	if v := os.Getenv("BYBIT_BASE_URL"); v != "" {
		c.Bybit.BaseURL = v
	}
	if v := os.Getenv("QUOTE_SUFFIX"); v != "" {
		c.Bybit.QuoteSuffix = v
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	c.Server.Port = util.ParseIntDefault(os.Getenv("PORT"), c.Server.Port)

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Scanner.Window == 0 {
		c.Scanner.Window = 60 * time.Second
	}
	if c.Scanner.Retention == 0 {
		c.Scanner.Retention = 2 * c.Scanner.Window
	}
	if c.Scanner.MinTurnover == 0 {
		c.Scanner.MinTurnover = 10_000_000
	}
	if c.Scanner.TieEpsilon == 0 {
		c.Scanner.TieEpsilon = 0.0001
	}
	if c.Scanner.HistoryRetention == 0 {
		c.Scanner.HistoryRetention = 24 * time.Hour
	}
	if c.Bybit.Category == "" {
		c.Bybit.Category = "linear"
	}
	if c.Bybit.RequestTimeout == 0 {
		c.Bybit.RequestTimeout = 10 * time.Second
	}
	if c.Backend.Type == "" {
		c.Backend.Type = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Bybit.BaseURL == "" {
		return fmt.Errorf("bybit.base_url is required")
	}
	if c.Bybit.QuoteSuffix == "" {
		return fmt.Errorf("bybit.quote_suffix is required")
	}
	if c.Backend.Type != "memory" && c.Backend.Type != "kafka" {
		return fmt.Errorf("backend.type must be 'memory' or 'kafka', got '%s'", c.Backend.Type)
	}
	if c.Backend.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty with backend.type=kafka")
	}
	if c.Scanner.Retention < c.Scanner.Window {
		return fmt.Errorf("scanner.retention must cover the volatility window")
	}
	return nil
}
