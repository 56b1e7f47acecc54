package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CACHE_TTL", "45")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("REDIS_DB", "x")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.CacheTTL != 45*time.Second || cfg.TokenTTL != 15*time.Minute {
		t.Fatalf("durations = %v %v", cfg.CacheTTL, cfg.TokenTTL)
	}
	if !cfg.CookieSecure || cfg.RedisDB != 0 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadDotEnvPriority(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	_ = os.WriteFile(filepath.Join(dir, ".env"), []byte("EARNHUB_A=env\nEARNHUB_B=env\n"), 0o600)
	_ = os.WriteFile(filepath.Join(dir, ".env.local"), []byte("EARNHUB_A=local\n"), 0o600)
	t.Setenv("EARNHUB_B", "os")
	os.Unsetenv("EARNHUB_A")
	defer os.Unsetenv("EARNHUB_A")

	if got := LoadDotEnv(); len(got) != 2 {
		t.Fatalf("loaded = %v", got)
	}
	if os.Getenv("EARNHUB_A") != "local" || os.Getenv("EARNHUB_B") != "os" {
		t.Fatalf("A=%q B=%q", os.Getenv("EARNHUB_A"), os.Getenv("EARNHUB_B"))
	}
}
