package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Session.TTL != 6*time.Hour {
		t.Errorf("TTL = %v, want 6h", cfg.Session.TTL)
	}
	if cfg.Generation.Timeout != 45*time.Second {
		t.Errorf("generation timeout = %v, want 45s", cfg.Generation.Timeout)
	}
	if cfg.Generation.Cooldown != 24*time.Hour {
		t.Errorf("cooldown = %v, want 24h", cfg.Generation.Cooldown)
	}
	if cfg.Generation.Model != "gpt-4o" {
		t.Errorf("model = %q", cfg.Generation.Model)
	}
	if !cfg.Flow.AskBusinessContext {
		t.Error("AskBusinessContext default should be true")
	}
	if cfg.Channel.MaxMessageLen != 4000 || cfg.Channel.MaxRetries != 3 {
		t.Errorf("channel = %+v", cfg.Channel)
	}
	if cfg.Storage.Type != "redis" || cfg.Storage.Retention != 500 {
		t.Errorf("storage = %+v", cfg.Storage)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  port: 9090
session:
  ttl: 2h
  fallback_only: true
flow:
  ask_business_context: false
storage:
  type: sqlite
  sqlite:
    path: /tmp/test.db
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("TTL = %v, want 2h", cfg.Session.TTL)
	}
	if !cfg.Session.FallbackOnly {
		t.Error("FallbackOnly not read from file")
	}
	if cfg.Flow.AskBusinessContext {
		t.Error("AskBusinessContext override not applied")
	}
	if cfg.Storage.Type != "sqlite" || cfg.Storage.SQLite.Path != "/tmp/test.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	// Untouched keys keep their defaults.
	if cfg.Generation.Model != "gpt-4o" {
		t.Errorf("model = %q", cfg.Generation.Model)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONSCIENCIA_SERVER__PORT", "7070")
	t.Setenv("CONSCIENCIA_REDIS__ADDR", "redis.internal:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, env override lost", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("Addr = %q", cfg.Redis.Addr)
	}
}

func TestLoad_SubstitutesEnvVarReferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  verify_token: ${TEST_VERIFY_TOKEN}
generation:
  api_key: ${TEST_OPENAI_KEY}
channel:
  token: prefix-${TEST_CHANNEL_TOKEN}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("TEST_VERIFY_TOKEN", "verify-123")
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	t.Setenv("TEST_CHANNEL_TOKEN", "tok")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.VerifyToken != "verify-123" {
		t.Errorf("VerifyToken = %q", cfg.Server.VerifyToken)
	}
	if cfg.Generation.APIKey != "sk-test" {
		t.Errorf("APIKey = %q", cfg.Generation.APIKey)
	}
	if cfg.Channel.Token != "prefix-tok" {
		t.Errorf("Token = %q", cfg.Channel.Token)
	}
}
