package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int           `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
		ReadTimeout    time.Duration `yaml:"readTimeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
		WriteTimeout   time.Duration `yaml:"writeTimeout" env:"SERVER_WRITE_TIMEOUT" env-default:"90s"`
		IdleTimeout    time.Duration `yaml:"idleTimeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
		AllowedOrigins []string      `yaml:"allowedOrigins" env:"SERVER_ALLOWED_ORIGINS" env-default:"*"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
		Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
	} `yaml:"log"`

	AI struct {
		Provider     string        `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
		Model        string        `yaml:"model" env:"AI_MODEL"`
		BaseURL      string        `yaml:"baseURL" env:"AI_BASE_URL"`
		OpenAIKey    string        `yaml:"openaiKey" env:"OPENAI_API_KEY"`
		AnthropicKey string        `yaml:"anthropicKey" env:"ANTHROPIC_API_KEY"`
		Timeout      time.Duration `yaml:"timeout" env:"AI_TIMEOUT" env-default:"60s"`
	} `yaml:"ai"`

	// History is the audit log of analyses; an empty driver disables it
	History struct {
		Driver   string `yaml:"driver" env:"HISTORY_DRIVER"`
		Host     string `yaml:"host" env:"HISTORY_DB_HOST"`
		Port     int    `yaml:"port" env:"HISTORY_DB_PORT"`
		User     string `yaml:"user" env:"HISTORY_DB_USER"`
		Password string `yaml:"password" env:"HISTORY_DB_PASSWORD"`
		Name     string `yaml:"name" env:"HISTORY_DB_NAME"`
		SSLMode  string `yaml:"sslMode" env:"HISTORY_DB_SSLMODE" env-default:"disable"`
	} `yaml:"history"`

	// Minio archives raw payloads that failed to parse; an empty endpoint disables it
	Minio struct {
		Endpoint   string `yaml:"endpoint" env:"MINIO_ENDPOINT"`
		AccessKey  string `yaml:"accessKey" env:"MINIO_ACCESS_KEY"`
		SecretKey  string `yaml:"secretKey" env:"MINIO_SECRET_KEY"`
		BucketName string `yaml:"bucketName" env:"MINIO_BUCKET" env-default:"kotoba-payloads"`
		Region     string `yaml:"region" env:"MINIO_REGION"`
		UseSSL     bool   `yaml:"useSSL" env:"MINIO_USE_SSL"`
	} `yaml:"minio"`
}

// Load reads the yaml file at path (a missing file is fine), then applies
// environment overrides and defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the service cannot start without
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case "openai":
		if c.AI.OpenAIKey == "" {
			return errors.New("OPENAI_API_KEY is required when ai.provider=openai")
		}
	case "anthropic":
		if c.AI.AnthropicKey == "" {
			return errors.New("ANTHROPIC_API_KEY is required when ai.provider=anthropic")
		}
	default:
		return fmt.Errorf("unsupported ai.provider %q (allowed: openai, anthropic)", c.AI.Provider)
	}

	switch c.History.Driver {
	case "", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported history.driver %q (allowed: mysql, postgres)", c.History.Driver)
	}
	return nil
}

// APIKey returns the key of the selected provider
func (c *Config) APIKey() string {
	if c.AI.Provider == "anthropic" {
		return c.AI.AnthropicKey
	}
	return c.AI.OpenAIKey
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.History.User,
		c.History.Password,
		c.History.Host,
		c.History.Port,
		c.History.Name,
	)
}

// PostgresDSN builds a lib/pq connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.History.Host,
		c.History.Port,
		c.History.User,
		c.History.Password,
		c.History.Name,
		c.History.SSLMode,
	)
}
