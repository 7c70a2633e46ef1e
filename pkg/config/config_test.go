package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Translator.DefaultMode != "inflectional" {
		t.Errorf("Translator.DefaultMode = %q, want inflectional", cfg.Translator.DefaultMode)
	}
	if cfg.Translator.MaxQueryLength != 4096 {
		t.Errorf("Translator.MaxQueryLength = %d, want 4096", cfg.Translator.MaxQueryLength)
	}
	if cfg.Translator.MaxNestingDepth != 100 {
		t.Errorf("Translator.MaxNestingDepth = %d, want 100", cfg.Translator.MaxNestingDepth)
	}
	if cfg.Kafka.Topics.TranslationEvents != "translation-events" {
		t.Errorf("Kafka.Topics.TranslationEvents = %q", cfg.Kafka.Topics.TranslationEvents)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9191
redis:
  poolSize: 32
translator:
  defaultMode: prefix
  extraStopwords: [foo, bar]
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Redis.PoolSize != 32 {
		t.Errorf("Redis.PoolSize = %d, want 32", cfg.Redis.PoolSize)
	}
	// Unset duration fields keep their defaults.
	if cfg.Redis.CacheTTL != 60*time.Second {
		t.Errorf("Redis.CacheTTL = %v, want 60s", cfg.Redis.CacheTTL)
	}
	if cfg.Translator.DefaultMode != "prefix" {
		t.Errorf("Translator.DefaultMode = %q, want prefix", cfg.Translator.DefaultMode)
	}
	if len(cfg.Translator.ExtraStopwords) != 2 {
		t.Errorf("ExtraStopwords = %v, want [foo bar]", cfg.Translator.ExtraStopwords)
	}
	// Untouched sections keep their defaults.
	if cfg.Postgres.Database != "querytranslator" {
		t.Errorf("Postgres.Database = %q, want querytranslator", cfg.Postgres.Database)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QT_SERVER_PORT", "7070")
	t.Setenv("QT_TRANSLATOR_DEFAULT_MODE", "prefix")
	t.Setenv("QT_REDIS_ADDR", "redis.internal:6379")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Translator.DefaultMode != "prefix" {
		t.Errorf("Translator.DefaultMode = %q, want prefix", cfg.Translator.DefaultMode)
	}
	if cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("Redis.Addr = %q, want redis.internal:6379", cfg.Redis.Addr)
	}
}
