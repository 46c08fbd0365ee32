package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Auth struct {
		Secret     string `yaml:"secret"`
		SessionTTL string `yaml:"session_ttl"`
	} `yaml:"auth"`
	AI struct {
		Model     string `yaml:"model"`
		TimeoutMs int    `yaml:"timeout_ms"`
	} `yaml:"ai"`
	Gist struct {
		Endpoint  string `yaml:"endpoint"`
		TimeoutMs int    `yaml:"timeout_ms"`
	} `yaml:"gist"`
}

// Load reads the yaml config and fills defaults for anything omitted.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyDefaults()

	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("config %s: auth.secret is required", path)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Path == "" {
		c.Database.Path = "journal.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Auth.SessionTTL == "" {
		c.Auth.SessionTTL = "24h"
	}
	if c.AI.Model == "" {
		c.AI.Model = "gpt-4o-mini"
	}
	if c.AI.TimeoutMs == 0 {
		c.AI.TimeoutMs = 30000
	}
	if c.Gist.Endpoint == "" {
		c.Gist.Endpoint = "https://api.github.com"
	}
	if c.Gist.TimeoutMs == 0 {
		c.Gist.TimeoutMs = 15000
	}
}

// SessionTTL parses the configured session lifetime, falling back to
// 24 hours on a malformed value.
func (c *Config) SessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Auth.SessionTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}
