package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestParseAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "auth:\n  secret: test-secret\n")
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Server.Addr != ":8001" {
		t.Fatalf("expected default addr, got %q", cfg.Server.Addr)
	}
	if cfg.LLM.Model != "gpt-3.5-turbo" {
		t.Fatalf("expected default model, got %q", cfg.LLM.Model)
	}
	if cfg.Messaging.RatePerSec != 5 {
		t.Fatalf("expected default rate, got %d", cfg.Messaging.RatePerSec)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "auth:\n  secret: x\nserver:\n  adress: \":9000\"\n")
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestParseYAMLValues(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9001"
  cors_origins:
    - "http://localhost:5173"
auth:
  secret: test-secret
  token_ttl: "1h"
scheduler:
  history_size: 50
  task_timeout: "30s"
messaging:
  rate_per_sec: 2
`)
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Server.Addr != ":9001" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected cors origins %v", cfg.Server.CORSOrigins)
	}
	if cfg.Scheduler.HistorySize != 50 || cfg.Scheduler.TaskTimeout != "30s" {
		t.Fatalf("unexpected scheduler config %+v", cfg.Scheduler)
	}
	if cfg.Messaging.RatePerSec != 2 {
		t.Fatalf("unexpected rate %d", cfg.Messaging.RatePerSec)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AUTH_SECRET", "from-env")
	t.Setenv("SENDGRID_API_KEY", "sg-key")

	path := writeConfig(t, "auth:\n  secret: from-file\n")
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Auth.Secret != "from-env" {
		t.Fatalf("expected env override, got %q", cfg.Auth.Secret)
	}
	if cfg.Messaging.Email.APIKey != "sg-key" {
		t.Fatalf("expected sendgrid key from env, got %q", cfg.Messaging.Email.APIKey)
	}
}

func TestValidateRequiresSecret(t *testing.T) {
	if err := Validate(context.Background(), &Config{}); err == nil {
		t.Fatalf("expected error for missing secret")
	}
	cfg := &Config{}
	cfg.Auth.Secret = "x"
	if err := Validate(context.Background(), cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsBadDuration(t *testing.T) {
	cfg := &Config{}
	cfg.Auth.Secret = "x"
	cfg.Scheduler.TaskTimeout = "not-a-duration"
	if err := Validate(context.Background(), cfg); err == nil {
		t.Fatalf("expected duration error")
	}
}

func TestLoadCommitsAndGet(t *testing.T) {
	path := writeConfig(t, "auth:\n  secret: s\n")
	m := NewManager(path)
	m.SetValidator(Validate)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Get() != cfg {
		t.Fatalf("Get should return the committed config")
	}
}

func TestWatchPublishesOnChange(t *testing.T) {
	path := writeConfig(t, "auth:\n  secret: s\nlogging:\n  level: info\n")
	m := NewManager(path)
	m.SetValidator(Validate)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	sub := m.Subscribe(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Watch(ctx) }()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("auth:\n  secret: s\nlogging:\n  level: debug\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-sub:
		if cfg.Logging.Level != "debug" {
			t.Fatalf("expected reloaded level, got %q", cfg.Logging.Level)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no config published after change")
	}
}

func TestParseDurationOrDefault(t *testing.T) {
	d, err := ParseDurationOrDefault("x", "", time.Minute)
	if err != nil || d != time.Minute {
		t.Fatalf("expected default minute, got %v err %v", d, err)
	}
	d, err = ParseDurationOrDefault("x", "45s", time.Minute)
	if err != nil || d != 45*time.Second {
		t.Fatalf("expected 45s, got %v err %v", d, err)
	}
	if _, err := ParseDurationOrDefault("x", "bogus", time.Minute); err == nil {
		t.Fatalf("expected error for bogus duration")
	}
}
