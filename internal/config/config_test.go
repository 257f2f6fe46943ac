package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"steward/internal/config"
)

func TestLoadDefaultsUseEnvSecretAndExpandPaths(t *testing.T) {
	t.Setenv("STEWARD_JWT_SECRET", "test-secret")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.RootDir != filepath.Join(tempHome, "shop") {
		t.Fatalf("unexpected root dir: %q", cfg.Paths.RootDir)
	}
	wantLogs := filepath.Join(tempHome, ".local", "share", "steward", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.Paths.APIBind != "127.0.0.1:8687" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Server.JWTSecret != "test-secret" {
		t.Fatalf("expected JWT secret from env, got %q", cfg.Server.JWTSecret)
	}
	if cfg.Organize.Hierarchical {
		t.Fatal("expected hierarchical mode disabled by default")
	}
	if !cfg.Organize.Recursive {
		t.Fatal("expected recursive scanning enabled by default")
	}
	if cfg.Monitor.DebounceSeconds != 2 {
		t.Fatalf("unexpected debounce default: %d", cfg.Monitor.DebounceSeconds)
	}
	if cfg.WatchDirOrRoot() != cfg.Paths.RootDir {
		t.Fatalf("watch dir should fall back to root, got %q", cfg.WatchDirOrRoot())
	}
	if cfg.DatabasePath() != filepath.Join(cfg.Paths.DataDir, "steward.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
}

func TestLoadParsesFileAndNormalizesCategories(t *testing.T) {
	t.Setenv("STEWARD_JWT_SECRET", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`root_dir = "` + filepath.Join(dir, "shop") + `"`,
		`watch_dir = "` + filepath.Join(dir, "intake") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		`data_dir = "` + filepath.Join(dir, "data") + `"`,
		"[organize]",
		"hierarchical = true",
		`default_customer = " Acme "`,
		"[server]",
		"enabled = false",
		"[categories]",
		`".STEP" = "CAD"`,
		`"tap" = "NC_UNPROVEN"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q to be loaded, got %q exists=%v", path, resolved, exists)
	}
	if !cfg.Organize.Hierarchical {
		t.Fatal("expected hierarchical mode from file")
	}
	if cfg.Organize.DefaultCustomer != "Acme" {
		t.Fatalf("expected trimmed default customer, got %q", cfg.Organize.DefaultCustomer)
	}
	if cfg.Paths.WatchDir != filepath.Join(dir, "intake") {
		t.Fatalf("unexpected watch dir: %q", cfg.Paths.WatchDir)
	}
	if got := cfg.Categories["step"]; got != "CAD" {
		t.Fatalf("extension keys should be lowercased without dot, got %v", cfg.Categories)
	}
	if got := cfg.Categories["tap"]; got != "NC_UNPROVEN" {
		t.Fatalf("missing tap override, got %v", cfg.Categories)
	}
}

func TestValidateRejectsMissingJWTSecret(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.RootDir = "/tmp/shop"
	cfg.Paths.LogDir = "/tmp/logs"
	cfg.Paths.DataDir = "/tmp/data"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing jwt secret")
	}
	if !strings.Contains(err.Error(), "server.jwt_secret") {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Server.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("server disabled should not require secret: %v", err)
	}
}

func TestValidateRejectsBadDebounce(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Enabled = false
	cfg.Monitor.DebounceSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero debounce")
	}
}
