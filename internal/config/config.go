// Package config loads the CLI's runtime configuration from a YAML file
// with environment fallbacks for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/LamiKaan/travel-assistant/pkg/domain"
)

// Contact mirrors domain.Contact for YAML decoding.
type Contact struct {
	Name  string `yaml:"name"`
	ID    int64  `yaml:"id"`
	Email string `yaml:"email"`
}

// TravelerConfig identifies the default traveler for CLI sessions.
type TravelerConfig struct {
	Contact `yaml:",inline"`
	Manager Contact `yaml:"manager"`
}

// ToDomain converts the YAML shape to the domain type.
func (t TravelerConfig) ToDomain() domain.Traveler {
	return domain.Traveler{
		Contact: domain.Contact(t.Contact),
		Manager: domain.Contact(t.Manager),
	}
}

// OpenAIConfig configures the model-backed reasoner.
type OpenAIConfig struct {
	// APIKey falls back to the OPENAI_API_KEY environment variable.
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// RedisConfig configures the Redis session store. A session store is only
// built from it when Addr is set; otherwise state stays in memory.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Config is the full CLI configuration.
type Config struct {
	Listen   string         `yaml:"listen"`
	LogLevel string         `yaml:"log_level"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Redis    RedisConfig    `yaml:"redis"`
	Traveler TravelerConfig `yaml:"traveler"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:   ":8080",
		LogLevel: "info",
		Traveler: TravelerConfig{
			Contact: Contact{Name: "Guest"},
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults. The OpenAI key falls back to the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg, nil
}
