package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("BACKEND_URL", "http://localhost:5001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.BackendURL != "http://localhost:5001" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if cfg.BackendTimeout != 60*time.Second {
		t.Errorf("BackendTimeout = %v", cfg.BackendTimeout)
	}
	if cfg.CacheTTL != 6*time.Hour {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.SessionTTL != 60*time.Minute {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.ChatLog.Enabled {
		t.Error("chat logging must default to off")
	}
	if cfg.ChatLog.QueueSize != 1000 {
		t.Errorf("QueueSize = %d", cfg.ChatLog.QueueSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BACKEND_URL", "http://backend:5001")
	t.Setenv("BACKEND_TIMEOUT", "30s")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("CHAT_LOG_ENABLED", "true")
	t.Setenv("CHAT_LOG_DIR", "/var/log/cyberrag")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.BackendURL != "http://backend:5001" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.BackendTimeout != 30*time.Second || cfg.SessionTTL != 15*time.Minute {
		t.Errorf("durations = %v, %v", cfg.BackendTimeout, cfg.SessionTTL)
	}
	if !cfg.ChatLog.Enabled || cfg.ChatLog.Dir != "/var/log/cyberrag" {
		t.Errorf("chat log = %+v", cfg.ChatLog)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("BACKEND_TIMEOUT", "not-a-duration")
	t.Setenv("CHAT_LOG_QUEUE_SIZE", "many")
	t.Setenv("CHAT_LOG_ENABLED", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendTimeout != 60*time.Second {
		t.Errorf("BackendTimeout = %v, want default", cfg.BackendTimeout)
	}
	if cfg.ChatLog.QueueSize != 1000 {
		t.Errorf("QueueSize = %d, want default", cfg.ChatLog.QueueSize)
	}
	if cfg.ChatLog.Enabled {
		t.Error("unparseable bool must fall back to default")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		return &Config{
			Port:           "8080",
			BackendURL:     "http://localhost:5001",
			BackendTimeout: time.Minute,
			DBPath:         "./data/cyberrag.db",
			SessionTTL:     time.Hour,
			ChatLog:        ChatLogConfig{QueueSize: 100},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"empty backend URL", func(c *Config) { c.BackendURL = "" }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"zero backend timeout", func(c *Config) { c.BackendTimeout = 0 }},
		{"zero session ttl", func(c *Config) { c.SessionTTL = 0 }},
		{"chat log enabled without dir", func(c *Config) { c.ChatLog.Enabled = true; c.ChatLog.Dir = "" }},
		{"global log enabled without path", func(c *Config) { c.ChatLog.GlobalEnabled = true; c.ChatLog.GlobalPath = "" }},
		{"zero queue size", func(c *Config) { c.ChatLog.QueueSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		frontendURL string
		want        bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"http://127.0.0.1:3000", true},
		{"https://cyberrag.example.com", false},
	}
	for _, tt := range tests {
		c := &Config{FrontendURL: tt.frontendURL}
		if got := c.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment(%q) = %v, want %v", tt.frontendURL, got, tt.want)
		}
	}
}
