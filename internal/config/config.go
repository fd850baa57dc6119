// Package config loads service configuration from the environment, with an
// optional YAML overlay for deployments that prefer files over env vars.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// fileEnvVar points at an optional YAML config; env vars still win.
const fileEnvVar = "COURSE_INGEST_CONFIG"

type Config struct {
	Service  string         `yaml:"service"`
	LogLevel string         `yaml:"log_level"`
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Postgres PostgresConfig `yaml:"postgres"`
	NATS     NATSConfig     `yaml:"nats"`
	Ollama   OllamaConfig   `yaml:"ollama"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
}

type StorageConfig struct {
	Root            string `yaml:"root"`
	Bucket          string `yaml:"bucket"`
	BucketSizeLimit int64  `yaml:"bucket_size_limit"`
}

type PipelineConfig struct {
	Workers     int           `yaml:"workers"`
	FileTimeout time.Duration `yaml:"file_timeout"`
	SignTTL     time.Duration `yaml:"sign_ttl"`
}

// PostgresConfig is optional; an empty DSN disables enrollments.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig is optional; an empty URL disables event publishing.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// OllamaConfig is optional; an empty URL disables question generation.
type OllamaConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Service:  envString("SERVICE_NAME", "course-ingest"),
		LogLevel: envString("LOG_LEVEL", "info"),
		HTTP: HTTPConfig{
			Addr:            envString("HTTP_ADDR", ":8080"),
			ReadTimeout:     envDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    envDuration("HTTP_WRITE_TIMEOUT", 5*time.Minute),
			ShutdownTimeout: envDuration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
			RateLimitRPS:    envFloat("HTTP_RATE_LIMIT_RPS", 20),
			RateLimitBurst:  envInt("HTTP_RATE_LIMIT_BURST", 40),
		},
		Storage: StorageConfig{
			Root:            envString("STORAGE_ROOT", "./data"),
			Bucket:          envString("STORAGE_BUCKET", "adapt-files"),
			BucketSizeLimit: envInt64("STORAGE_BUCKET_SIZE_LIMIT", 0),
		},
		Pipeline: PipelineConfig{
			Workers:     envInt("PIPELINE_WORKERS", 4),
			FileTimeout: envDuration("PIPELINE_FILE_TIMEOUT", 2*time.Minute),
			SignTTL:     envDuration("PIPELINE_SIGN_TTL", 10*time.Minute),
		},
		Postgres: PostgresConfig{
			DSN: envString("POSTGRES_DSN", ""),
		},
		NATS: NATSConfig{
			URL:     envString("NATS_URL", ""),
			Subject: envString("NATS_SUBJECT", "courses.processed"),
		},
		Ollama: OllamaConfig{
			URL:   envString("OLLAMA_URL", ""),
			Model: envString("OLLAMA_MODEL", "llama3"),
		},
	}

	if path := os.Getenv(fileEnvVar); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http addr is required")
	}
	if c.Storage.Root == "" {
		return fmt.Errorf("storage root is required")
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline workers must be at least 1, got %d", c.Pipeline.Workers)
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
