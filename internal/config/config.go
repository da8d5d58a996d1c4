// Package config loads dashboard settings from the environment.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultDataFile is looked up next to the executable when no path is configured.
const DefaultDataFile = "supply.csv"

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Data    DataConfig
	Session SessionConfig
	Log     LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Addr        string
	CORSEnabled bool
}

// DataConfig holds the dataset location
type DataConfig struct {
	Path string
}

// SessionConfig holds session lifetime settings
type SessionConfig struct {
	TTL          time.Duration
	ReapInterval time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr:        getEnvOrDefault("SUPPLY_ADDR", ":8080"),
			CORSEnabled: getEnvBoolOrDefault("CORS_ENABLED", true),
		},
		Data: DataConfig{
			Path: getEnvOrDefault("SUPPLY_DATA_PATH", defaultDataPath()),
		},
		Session: SessionConfig{
			TTL:          getEnvDurationOrDefault("SESSION_TTL", 30*time.Minute),
			ReapInterval: getEnvDurationOrDefault("SESSION_REAP_INTERVAL", time.Minute),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return errors.New("data path is required")
	}
	if c.Server.Addr == "" {
		return errors.New("listen address is required")
	}
	if c.Session.TTL < 0 {
		return errors.New("session ttl must not be negative")
	}
	return nil
}

// defaultDataPath resolves supply.csv relative to the install location.
func defaultDataPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultDataFile
	}
	return filepath.Join(filepath.Dir(exe), DefaultDataFile)
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
