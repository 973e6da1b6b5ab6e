package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoadServer_Defaults tests development defaults.
func TestLoadServer_Defaults(t *testing.T) {
	t.Setenv("MYDAYLOG_ENV", "")
	t.Setenv("MYDAYLOG_JWT_SECRET", "")
	t.Setenv("MYDAYLOG_CSRF_KEY", "")

	cfg, err := LoadServer("")
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.DBPath != "mydaylog.db" || cfg.IsProduction() {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.JWTSecret == "" || len(cfg.CSRFKey) != 32 {
		t.Error("development secrets not filled in")
	}
	if cfg.SlowQuery != 50*time.Millisecond || cfg.ReminderInterval != 30*time.Second {
		t.Errorf("durations = %v, %v", cfg.SlowQuery, cfg.ReminderInterval)
	}
}

// TestLoadServer_ProductionRequiresSecrets tests the production guard.
func TestLoadServer_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("MYDAYLOG_ENV", "production")
	t.Setenv("MYDAYLOG_JWT_SECRET", "")
	t.Setenv("MYDAYLOG_CSRF_KEY", "")

	if _, err := LoadServer(""); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("err = %v, want ErrMissingSecret", err)
	}
}

// TestLoadServer_EnvFile tests .env loading without overriding the environment.
func TestLoadServer_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "MYDAYLOG_ADDR=:9999\nMYDAYLOG_RATE_LIMIT=5\nMYDAYLOG_DB=from-file.db\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MYDAYLOG_ENV", "")
	t.Setenv("MYDAYLOG_DB", "from-env.db")
	t.Setenv("MYDAYLOG_ADDR", "")
	t.Setenv("MYDAYLOG_RATE_LIMIT", "")
	os.Unsetenv("MYDAYLOG_ADDR")
	os.Unsetenv("MYDAYLOG_RATE_LIMIT")

	cfg, err := LoadServer(envFile)
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.RateLimitPerSecond != 5 {
		t.Errorf("cfg = %+v, want values from .env", cfg)
	}
	if cfg.DBPath != "from-env.db" {
		t.Errorf("DBPath = %q, environment should win", cfg.DBPath)
	}
}

// TestLoadServer_MissingEnvFile tests that an absent .env is not an error.
func TestLoadServer_MissingEnvFile(t *testing.T) {
	t.Setenv("MYDAYLOG_ENV", "")
	if _, err := LoadServer(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("LoadServer: %v", err)
	}
}

// TestLoadClient tests YAML loading, env override and URL trimming.
func TestLoadClient(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MYDAYLOG_API_URL", "")

	cfg, err := LoadClient(dir)
	if err != nil {
		t.Fatalf("LoadClient defaults: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q, want default", cfg.APIURL)
	}

	if err := (Client{APIURL: "http://localhost:8080///", Timeout: 3 * time.Second}).Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cfg, err = LoadClient(dir)
	if err != nil {
		t.Fatalf("LoadClient: %v", err)
	}
	if cfg.APIURL != "http://localhost:8080" || cfg.Timeout != 3*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}

	t.Setenv("MYDAYLOG_API_URL", "https://example.test/")
	cfg, _ = LoadClient(dir)
	if cfg.APIURL != "https://example.test" {
		t.Errorf("env override = %q", cfg.APIURL)
	}
}

// TestLoadClient_BadYAML tests parse failures surface.
func TestLoadClient_BadYAML(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api_url: [unclosed"), 0o644)
	if _, err := LoadClient(dir); err == nil {
		t.Error("expected parse error")
	}
}
