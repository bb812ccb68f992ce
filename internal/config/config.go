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
	BackendURL     string
	BackendTimeout time.Duration
	DBPath         string
	CacheTTL       time.Duration // freshness window for dashboard cache hits
	SessionTTL     time.Duration // idle time before a conversation is discarded
	ChatLog        ChatLogConfig
}

// ChatLogConfig controls NDJSON conversation logging.
type ChatLogConfig struct {
	Enabled       bool
	Dir           string
	GlobalEnabled bool
	GlobalPath    string
	QueueSize     int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		BackendURL:     getEnv("BACKEND_URL", "http://localhost:5001"),
		BackendTimeout: getEnvDuration("BACKEND_TIMEOUT", 60*time.Second),
		DBPath:         getEnv("DB_PATH", "./data/cyberrag.db"),
		CacheTTL:       getEnvDuration("CACHE_TTL", 6*time.Hour),
		SessionTTL:     getEnvDuration("SESSION_TTL", 60*time.Minute),
		ChatLog: ChatLogConfig{
			Enabled:       getEnvBool("CHAT_LOG_ENABLED", false),
			Dir:           getEnv("CHAT_LOG_DIR", "./data/logs/conversations"),
			GlobalEnabled: getEnvBool("CHAT_LOG_GLOBAL_ENABLED", false),
			GlobalPath:    getEnv("CHAT_LOG_GLOBAL_PATH", "./data/logs/conversations/all.ndjson"),
			QueueSize:     getEnvInt("CHAT_LOG_QUEUE_SIZE", 1000),
		},
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
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be > 0")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.ChatLog.Enabled && c.ChatLog.Dir == "" {
		return fmt.Errorf("CHAT_LOG_DIR cannot be empty when chat logging is enabled")
	}
	if c.ChatLog.GlobalEnabled && c.ChatLog.GlobalPath == "" {
		return fmt.Errorf("CHAT_LOG_GLOBAL_PATH cannot be empty when global chat logging is enabled")
	}
	if c.ChatLog.QueueSize <= 0 {
		return fmt.Errorf("CHAT_LOG_QUEUE_SIZE must be > 0")
	}
	return nil
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

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
