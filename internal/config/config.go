// Package config loads service configuration from config.yaml and
// CONSCIENCIA_-prefixed environment variables.
package config

import (
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Redis      RedisConfig      `koanf:"redis"`
	Session    SessionConfig    `koanf:"session"`
	Flow       FlowConfig       `koanf:"flow"`
	Generation GenerationConfig `koanf:"generation"`
	Channel    ChannelConfig    `koanf:"channel"`
	Storage    StorageConfig    `koanf:"storage"`
}

type ServerConfig struct {
	Port        int    `koanf:"port"`
	VerifyToken string `koanf:"verify_token"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	TLS      bool   `koanf:"tls"`
}

type SessionConfig struct {
	// TTL is the sliding inactivity window after which a session silently
	// resets to fresh.
	TTL time.Duration `koanf:"ttl"`

	// FallbackOnly skips the Redis primary entirely (local development).
	FallbackOnly bool `koanf:"fallback_only"`
}

type FlowConfig struct {
	// AskBusinessContext controls whether the business-context question is
	// part of the interview. Flow variants are data, not code paths.
	AskBusinessContext bool `koanf:"ask_business_context"`
}

type GenerationConfig struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`

	Timeout        time.Duration `koanf:"timeout"`
	MaxInputTokens int           `koanf:"max_input_tokens"`

	// Cooldown is the minimum interval between accepted regenerations.
	Cooldown time.Duration `koanf:"cooldown"`
}

type ChannelConfig struct {
	BaseURL string `koanf:"base_url"`
	Token   string `koanf:"token"`
	PhoneID string `koanf:"phone_id"`

	MaxMessageLen int `koanf:"max_message_len"`
	MaxRetries    int `koanf:"max_retries"`
}

type StorageConfig struct {
	// Type selects the interaction recorder backend: redis, sqlite, memory.
	Type   string       `koanf:"type"`
	SQLite SQLiteConfig `koanf:"sqlite"`

	// Retention bounds the interaction log to the most recent N records.
	Retention int `koanf:"retention"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = "config.yaml"
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// File not found is OK, we'll use env vars
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	// Environment variables override file config
	if err := k.Load(env.Provider("CONSCIENCIA_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "CONSCIENCIA_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	applyDefaults(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	// Substitute ${VAR} references so secrets can live in the environment
	cfg.Server.VerifyToken = substituteEnvVars(cfg.Server.VerifyToken)
	cfg.Redis.Password = substituteEnvVars(cfg.Redis.Password)
	cfg.Generation.APIKey = substituteEnvVars(cfg.Generation.APIKey)
	cfg.Channel.Token = substituteEnvVars(cfg.Channel.Token)

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	defaults := map[string]interface{}{
		"server.port":                 8080,
		"redis.addr":                  "localhost:6379",
		"session.ttl":                 "6h",
		"flow.ask_business_context":   true,
		"generation.timeout":          "45s",
		"generation.max_input_tokens": 3000,
		"generation.cooldown":         "24h",
		"generation.model":            "gpt-4o",
		"channel.base_url":            "https://graph.facebook.com/v19.0",
		"channel.max_message_len":     4000,
		"channel.max_retries":         3,
		"storage.type":                "redis",
		"storage.sqlite.path":         "./data/interactions.db",
		"storage.retention":           500,
	}
	for key, val := range defaults {
		if !k.Exists(key) {
			k.Set(key, val)
		}
	}
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
