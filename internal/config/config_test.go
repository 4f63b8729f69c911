package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("API_PORT", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("SESSION_IDLE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Env != "dev" || cfg.Port != "8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionIdle != 20*time.Minute {
		t.Fatalf("idle default: got %s", cfg.SessionIdle)
	}
	// Dev gets a placeholder secret so the server can boot.
	if cfg.SessionSecret == "" {
		t.Fatalf("dev must get a fallback secret")
	}
}

func TestLoadRequiresSecretOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("prod without SESSION_SECRET must fail")
	}

	t.Setenv("SESSION_SECRET", "super-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SessionSecret != "super-secret" {
		t.Fatalf("got %q", cfg.SessionSecret)
	}
}

func TestLoadParsesIdleWindow(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SESSION_IDLE", "45m")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SessionIdle != 45*time.Minute {
		t.Fatalf("got %s", cfg.SessionIdle)
	}
}
