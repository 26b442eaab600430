package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != DefaultAddr {
		t.Fatalf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.Latency != LATENCY {
		t.Fatalf("Latency = %v, want %v", cfg.Latency, LATENCY)
	}
	if cfg.TickInterval != TICK_INTERVAL || cfg.SpawnInterval != SPAWN_INTERVAL || cfg.FlushInterval != FLUSH_INTERVAL {
		t.Fatalf("unexpected intervals: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("CORSOrigins = %v, want [*]", cfg.CORSOrigins)
	}
	if cfg.JWTSecret != DefaultJWTSecret {
		t.Fatalf("JWTSecret = %q", cfg.JWTSecret)
	}
	if cfg.AdminUsername != "admin" || cfg.AdminPasswordHash != "" {
		t.Fatalf("admin login should default to disabled: %q %q", cfg.AdminUsername, cfg.AdminPasswordHash)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ARENA_ADDR", ":9090")
	t.Setenv("ARENA_LATENCY", "350ms")
	t.Setenv("ARENA_CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("ARENA_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.Latency != 350*time.Millisecond {
		t.Fatalf("Latency = %v", cfg.Latency)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.env")
	if err := os.WriteFile(path, []byte("ARENA_REDIS_CHANNEL=test:results\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("ARENA_REDIS_CHANNEL") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RedisChannel != "test:results" {
		t.Fatalf("RedisChannel = %q", cfg.RedisChannel)
	}
}

func TestLoadClampsFlushBelowLatency(t *testing.T) {
	t.Setenv("ARENA_LATENCY", "20ms")
	t.Setenv("ARENA_FLUSH_INTERVAL", "50ms")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FlushInterval != 10*time.Millisecond {
		t.Fatalf("FlushInterval = %v, want 10ms", cfg.FlushInterval)
	}
}

func TestLoadRejectsNonPositiveDurations(t *testing.T) {
	t.Setenv("ARENA_TICK_INTERVAL", "-5ms")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TickInterval != TICK_INTERVAL {
		t.Fatalf("TickInterval = %v, want default", cfg.TickInterval)
	}
}
