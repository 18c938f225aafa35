package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SLOT_GRANULARITY_MINUTES", "")
	t.Setenv("BUFFER_MINUTES", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.SlotGranularityMinutes != 15 {
		t.Fatalf("expected default slot granularity 15, got %d", cfg.SlotGranularityMinutes)
	}
	if cfg.BufferMinutes != 15 {
		t.Fatalf("expected default buffer 15, got %d", cfg.BufferMinutes)
	}
	if cfg.EmailProvider != "stub" {
		t.Fatalf("expected default email provider stub, got %s", cfg.EmailProvider)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Fatalf("expected default shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("BUFFER_MINUTES", "30")
	t.Setenv("USE_MEMORY_QUEUE", "true")
	t.Setenv("EMAIL_PROVIDER", "SendGrid")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://spa.example.com, https://admin.example.com")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected database url override, got %s", cfg.DatabaseURL)
	}
	if cfg.BufferMinutes != 30 {
		t.Fatalf("expected buffer override, got %d", cfg.BufferMinutes)
	}
	if !cfg.UseMemoryQueue {
		t.Fatalf("expected memory queue enabled")
	}
	if cfg.EmailProvider != "sendgrid" {
		t.Fatalf("expected normalized email provider, got %s", cfg.EmailProvider)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowedOrigins)
	}
}
