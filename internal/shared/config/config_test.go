package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"RATING_PROVIDER", "RATING_TIMEOUT_SECONDS", "POLICY_PREFIX", "SESSION_TTL_MINUTES", "ENV"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.RatingProvider != "openai" {
		t.Fatalf("expected openai default, got %q", cfg.RatingProvider)
	}
	if cfg.RatingTimeout != 60*time.Second {
		t.Fatalf("expected 60s rating timeout, got %s", cfg.RatingTimeout)
	}
	if cfg.PolicyPrefix != "policies" {
		t.Fatalf("expected policies prefix, got %q", cfg.PolicyPrefix)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("expected 2h session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected dev env, got %q", cfg.Env)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RATING_PROVIDER", " Vertex ")
	t.Setenv("RATING_TIMEOUT_SECONDS", "5")
	t.Setenv("POLICY_PREFIX", "/docs/policies/")
	t.Setenv("POLICY_WATCH", "true")
	t.Setenv("ENV", "prod")

	cfg := Load()
	if cfg.RatingProvider != "vertex" {
		t.Fatalf("expected vertex, got %q", cfg.RatingProvider)
	}
	if cfg.RatingTimeout != 5*time.Second {
		t.Fatalf("expected 5s, got %s", cfg.RatingTimeout)
	}
	if cfg.PolicyPrefix != "docs/policies" {
		t.Fatalf("expected trimmed prefix, got %q", cfg.PolicyPrefix)
	}
	if !cfg.PolicyWatch {
		t.Fatalf("expected policy watch enabled")
	}
	if cfg.Env != "production" {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("RATING_TIMEOUT_SECONDS", "soon")
	if got := Load().RatingTimeout; got != 60*time.Second {
		t.Fatalf("expected default on invalid input, got %s", got)
	}
}

func TestLoadEnvFilesKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	body := "# comment\nexport GOV_TEST_A=\"quoted\"\nGOV_TEST_B='single'\nGOV_TEST_C=from-file\nnot a pair\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("GOV_TEST_C", "from-env")
	t.Setenv("GOV_TEST_A", "")
	os.Unsetenv("GOV_TEST_A")
	t.Setenv("GOV_TEST_B", "")
	os.Unsetenv("GOV_TEST_B")

	loadEnvFiles(path, filepath.Join(dir, "missing.env"))

	if got := os.Getenv("GOV_TEST_A"); got != "quoted" {
		t.Fatalf("expected quoted value, got %q", got)
	}
	if got := os.Getenv("GOV_TEST_B"); got != "single" {
		t.Fatalf("expected single quoted value, got %q", got)
	}
	if got := os.Getenv("GOV_TEST_C"); got != "from-env" {
		t.Fatalf("expected env value to win, got %q", got)
	}
}
