package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "SQLITE_DB_PATH", "AMQP_URL", "CATEGORIES", "FALLBACK_CATEGORY", "GEMINI_API_KEY", "DATA_BACKEND"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8082" {
		t.Errorf("expected default port 8082, got %s", cfg.Port)
	}
	if cfg.DataBackend != "sqlite" {
		t.Errorf("expected default backend sqlite, got %s", cfg.DataBackend)
	}
	if len(cfg.Categories) != len(DefaultCategories) {
		t.Errorf("expected %d default categories, got %d", len(DefaultCategories), len(cfg.Categories))
	}
	if cfg.FallbackCategory != "Miscellaneous" {
		t.Errorf("expected default fallback Miscellaneous, got %s", cfg.FallbackCategory)
	}
	if cfg.ExtractionEnabled() {
		t.Error("extraction should be disabled without an API key")
	}
	if cfg.AlertTimeout != 10*time.Second {
		t.Errorf("expected default alert timeout 10s, got %v", cfg.AlertTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CATEGORIES", "Food, Transport , ,Rent")
	t.Setenv("FALLBACK_CATEGORY", "Food")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("ALERT_TIMEOUT", "30s")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %s", cfg.Port)
	}
	want := []string{"Food", "Transport", "Rent"}
	if len(cfg.Categories) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.Categories)
	}
	for i, c := range want {
		if cfg.Categories[i] != c {
			t.Errorf("category %d: expected %s, got %s", i, c, cfg.Categories[i])
		}
	}
	if !cfg.ExtractionEnabled() {
		t.Error("extraction should be enabled with an API key")
	}
	if cfg.AlertTimeout != 30*time.Second {
		t.Errorf("expected alert timeout 30s, got %v", cfg.AlertTimeout)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:             "8082",
			SQLiteDBPath:     "./finsight-test.db",
			Categories:       []string{"Food", "Miscellaneous"},
			FallbackCategory: "Miscellaneous",
			AlertPrefetch:    10,
			AlertTimeout:     10 * time.Second,
			DataBackend:      "memory",
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("valid config should pass: %v", err)
	}

	withAMQP := base()
	withAMQP.DataBackend = "sqlite"
	withAMQP.AMQPURL = "amqp://localhost:5672/"
	withAMQP.AMQPExchange = "finsight"
	withAMQP.AMQPQueue = "budget_alerts"
	if err := withAMQP.Validate(); err != nil {
		t.Fatalf("sqlite backend with AMQP should pass: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Port = "http" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"bad backend", func(c *Config) { c.DataBackend = "sheets" }, "invalid data backend"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost" }, "invalid AMQP URL scheme"},
		{"empty amqp queue", func(c *Config) { c.AMQPURL = "amqp://localhost:5672/"; c.AMQPQueue = ""; c.AMQPExchange = "x" }, "queue name cannot be empty"},
		{"empty categories", func(c *Config) { c.Categories = nil }, "category set cannot be empty"},
		{"unknown fallback", func(c *Config) { c.FallbackCategory = "NotARealCategory" }, "fallback category"},
		{"amqp with memory backend", func(c *Config) {
			c.AMQPURL = "amqp://localhost:5672/"
			c.AMQPExchange = "finsight"
			c.AMQPQueue = "budget_alerts"
		}, "require the sqlite backend"},
		{"zero prefetch", func(c *Config) { c.AlertPrefetch = 0 }, "alert prefetch"},
		{"tiny timeout", func(c *Config) { c.AlertTimeout = time.Millisecond }, "alert timeout"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got: %v", tc.wantErr, err)
			}
		})
	}
}
