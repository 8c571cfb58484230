// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	FrontendURL    string
	DBPath         string
	OrderAPIURL    string
	OrderAPIToken  string
	SessionSeconds int
	SettleSeconds  int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		DBPath:         getEnv("DB_PATH", "./data/kiosk.db"),
		OrderAPIURL:    getEnv("ORDER_API_URL", "http://13.209.210.38/api"),
		OrderAPIToken:  getEnv("ORDER_API_TOKEN", ""),
		SessionSeconds: getEnvInt("SESSION_SECONDS", 60),
		SettleSeconds:  getEnvInt("SETTLE_SECONDS", 3),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.OrderAPIURL == "" {
		return fmt.Errorf("ORDER_API_URL cannot be empty")
	}
	if c.SessionSeconds <= 0 {
		return fmt.Errorf("SESSION_SECONDS must be > 0")
	}
	if c.SettleSeconds < 0 {
		return fmt.Errorf("SETTLE_SECONDS must be >= 0")
	}
	return nil
}

// SettleDelay returns the time-over settle delay as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleSeconds) * time.Second
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
