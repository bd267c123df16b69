package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines the data layer configuration.
type Config struct {
	API   APIConfig   `yaml:"api"`
	Cache CacheConfig `yaml:"cache"`
	Team  TeamConfig  `yaml:"team"`
	Log   LogConfig   `yaml:"log"`
}

type APIConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Token       string        `yaml:"token"`
	AuthWait    time.Duration `yaml:"auth_wait"`
	PreviewTopN int           `yaml:"preview_top_n"`
}

type CacheConfig struct {
	Path       string        `yaml:"path"`
	TTL        time.Duration `yaml:"ttl"`
	QuotaBytes int64         `yaml:"quota_bytes"`
}

type TeamConfig struct {
	Default string `yaml:"default"`
	// Strict disables falling back to the remembered team id when no
	// team is supplied and none is active.
	Strict bool `yaml:"strict"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		API: APIConfig{
			BaseURL:     "http://localhost:8080",
			AuthWait:    10 * time.Second,
			PreviewTopN: 5,
		},
		Cache: CacheConfig{
			Path:       "casedeck.db",
			TTL:        10 * time.Minute,
			QuotaBytes: 5 << 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("CASEDECK_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if url := os.Getenv("CASEDECK_API_URL"); url != "" {
		cfg.API.BaseURL = url
	}
	if token := os.Getenv("CASEDECK_API_TOKEN"); token != "" {
		cfg.API.Token = token
	}
	if path := os.Getenv("CASEDECK_CACHE_PATH"); path != "" {
		cfg.Cache.Path = path
	}
	if ttlStr := os.Getenv("CASEDECK_CACHE_TTL"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CASEDECK_CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = ttl
	}
	if quotaStr := os.Getenv("CASEDECK_CACHE_QUOTA"); quotaStr != "" {
		quota, err := strconv.ParseInt(quotaStr, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CASEDECK_CACHE_QUOTA: %w", err)
		}
		cfg.Cache.QuotaBytes = quota
	}
	if team := os.Getenv("CASEDECK_TEAM"); team != "" {
		cfg.Team.Default = team
	}
	if strictStr := os.Getenv("CASEDECK_TEAM_STRICT"); strictStr != "" {
		strict, err := strconv.ParseBool(strictStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CASEDECK_TEAM_STRICT: %w", err)
		}
		cfg.Team.Strict = strict
	}
	if level := os.Getenv("CASEDECK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
