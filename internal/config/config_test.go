package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8081" {
		t.Errorf("Port = %s, want 8081", cfg.Port)
	}
	if cfg.SQLiteDBPath != "./data/fintrack.db" {
		t.Errorf("SQLiteDBPath = %s", cfg.SQLiteDBPath)
	}
	if cfg.AMQPExchange != "fintrack" || cfg.AMQPQueue != "transaction_events" {
		t.Errorf("AMQP names = %s/%s", cfg.AMQPExchange, cfg.AMQPQueue)
	}
	if cfg.RecurringInterval != time.Hour {
		t.Errorf("RecurringInterval = %v, want 1h", cfg.RecurringInterval)
	}
	if cfg.CacheSize != 256 || cfg.CacheTTL != time.Minute {
		t.Errorf("cache = %d/%v", cfg.CacheSize, cfg.CacheTTL)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging = %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_SIZE", "64")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.CacheSize != 64 || cfg.CacheTTL != 30*time.Second {
		t.Errorf("cache = %d/%v", cfg.CacheSize, cfg.CacheTTL)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Errorf("RateLimitRPS = %v, want 2.5", cfg.RateLimitRPS)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %s, want json", cfg.LogFormat)
	}
}

func TestLoadFileAndPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.yaml")
	content := "port: \"7070\"\nlog_level: debug\nrecurring_interval: 15m\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FINTRACK_CONFIG", path)
	// Environment wins over the file.
	t.Setenv("PORT", "6060")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "6060" {
		t.Errorf("Port = %s, env should win over file", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, file should win over default", cfg.LogLevel)
	}
	if cfg.RecurringInterval != 15*time.Minute {
		t.Errorf("RecurringInterval = %v, want 15m", cfg.RecurringInterval)
	}
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("cache_ttl: [not, a, duration]"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FINTRACK_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestValidateAccumulates(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Port = "not-a-port"
	cfg.SQLiteDBPath = ""
	cfg.LogLevel = "loud"

	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	msg := err.Error()
	for _, want := range []string{"invalid port", "database path", "invalid log level"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error should mention %q, got:\n%s", want, msg)
		}
	}
}

func TestValidateAMQP(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad scheme", func(c *Config) { c.AMQPURL = "http://localhost" }, "must be 'amqp' or 'amqps'"},
		{"missing exchange", func(c *Config) { c.AMQPExchange = "" }, "exchange name cannot be empty"},
		{"missing queue", func(c *Config) { c.AMQPQueue = "" }, "queue name cannot be empty"},
		{"no broker at all", func(c *Config) { c.AMQPURL = ""; c.AMQPExchange = ""; c.AMQPQueue = "" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateLimits(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"recurring interval too short", func(c *Config) { c.RecurringInterval = 30 * time.Second }},
		{"cache size zero", func(c *Config) { c.CacheSize = 0 }},
		{"cache ttl too short", func(c *Config) { c.CacheTTL = 500 * time.Millisecond }},
		{"rps zero", func(c *Config) { c.RateLimitRPS = 0 }},
		{"burst zero", func(c *Config) { c.RateLimitBurst = 0 }},
		{"port out of range", func(c *Config) { c.Port = "70000" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation failure")
			}
		})
	}
}
