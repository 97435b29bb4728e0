/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
	"gopkg.in/yaml.v3"

	"github.com/suparena/redismodel/model"
)

const (
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// Config describes a backend connection and the models stored in it.
// Values come from an optional YAML file; environment variables override them.
type Config struct {
	Backend   string         `yaml:"backend" env:"REDISMODEL_BACKEND"`
	KeyPrefix string         `yaml:"key_prefix" env:"REDISMODEL_KEY_PREFIX"`
	Redis     RedisConfig    `yaml:"redis"`
	DynamoDB  DynamoDBConfig `yaml:"dynamodb"`
	Log       LogConfig      `yaml:"log"`
	Models    []ModelConfig  `yaml:"models"`
}

type RedisConfig struct {
	URL     string        `yaml:"url" env:"REDIS_URL"`
	Breaker BreakerConfig `yaml:"circuit_breaker"`
}

type BreakerConfig struct {
	Enabled      bool          `yaml:"enabled" env:"REDIS_BREAKER_ENABLED"`
	MinRequests  uint32        `yaml:"min_requests" env:"REDIS_BREAKER_MIN_REQUESTS"`
	FailureRatio float64       `yaml:"failure_ratio" env:"REDIS_BREAKER_FAILURE_RATIO"`
	Interval     time.Duration `yaml:"interval" env:"REDIS_BREAKER_INTERVAL"`
	OpenTimeout  time.Duration `yaml:"open_timeout" env:"REDIS_BREAKER_OPEN_TIMEOUT"`
}

type DynamoDBConfig struct {
	Table     string `yaml:"table" env:"DYNAMODB_TABLE"`
	Region    string `yaml:"region" env:"AWS_REGION"`
	AccessKey string `yaml:"access_key" env:"AWS_ACCESS_KEY_ID"`
	SecretKey string `yaml:"secret_key" env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint  string `yaml:"endpoint" env:"DYNAMODB_ENDPOINT"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// ModelConfig declares one model. Name selects the model on the command line.
type ModelConfig struct {
	Name              string        `yaml:"name"`
	Namespace         string        `yaml:"namespace"`
	Layout            string        `yaml:"layout"`
	Expire            time.Duration `yaml:"expire"`
	UniqueTogether    []string      `yaml:"unique_together"`
	KeySeparator      string        `yaml:"key_separator"`
	StrictPerformance bool          `yaml:"strict_performance"`
	GeneratePK        bool          `yaml:"generate_pk"`
}

// LayoutKind returns the configured layout, per_key when unset
func (m ModelConfig) LayoutKind() model.LayoutKind {
	if m.Layout == "" {
		return model.LayoutPerKey
	}
	return model.LayoutKind(m.Layout)
}

// Options converts m into store options. The namespace defaults to the model name.
func (m ModelConfig) Options(keyPrefix string) model.Options {
	ns := m.Namespace
	if ns == "" {
		ns = m.Name
	}
	return model.Options{
		Namespace:         ns,
		KeyPrefix:         keyPrefix,
		Expire:            m.Expire,
		UniqueTogether:    m.UniqueTogether,
		KeySeparator:      m.KeySeparator,
		StrictPerformance: m.StrictPerformance,
		GeneratePK:        m.GeneratePK,
	}
}

// Default returns the configuration used when neither file nor environment set a value
func Default() *Config {
	return &Config{
		Backend: BackendRedis,
		Redis: RedisConfig{
			URL: "redis://localhost:6379/0",
			Breaker: BreakerConfig{
				MinRequests:  5,
				FailureRatio: 0.6,
				Interval:     10 * time.Second,
				OpenTimeout:  30 * time.Second,
			},
		},
		DynamoDB: DynamoDBConfig{
			Region: "us-east-1",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads .env, then the YAML file at path (skipped when path is empty),
// then the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := env.Load(cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks backend settings and model declarations
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendRedis:
		if c.Redis.URL == "" {
			return errors.New("REDIS_URL is required for the redis backend")
		}
	case BackendDynamoDB:
		if c.DynamoDB.Table == "" {
			return errors.New("DYNAMODB_TABLE is required for the dynamodb backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	if c.Redis.Breaker.FailureRatio < 0 || c.Redis.Breaker.FailureRatio > 1 {
		return fmt.Errorf("circuit breaker failure ratio must be between 0 and 1, got %v", c.Redis.Breaker.FailureRatio)
	}

	names := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if m.Name == "" {
			return fmt.Errorf("models[%d]: name is required", i)
		}
		if names[m.Name] {
			return fmt.Errorf("models[%d]: duplicate model name %q", i, m.Name)
		}
		names[m.Name] = true

		switch m.LayoutKind() {
		case model.LayoutPerKey, model.LayoutSharedHash:
		default:
			return fmt.Errorf("model %s: unknown layout %q", m.Name, m.Layout)
		}
		if m.Expire < 0 {
			return fmt.Errorf("model %s: expire must not be negative", m.Name)
		}
	}
	return nil
}

// Model returns the declaration named name
func (c *Config) Model(name string) (ModelConfig, bool) {
	for _, m := range c.Models {
		if m.Name == name {
			return m, true
		}
	}
	return ModelConfig{}, false
}
