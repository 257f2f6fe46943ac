package testsupport

import (
	"path/filepath"
	"testing"

	"steward/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.RootDir = filepath.Join(base, "shop")
	cfg.Paths.WatchDir = filepath.Join(base, "incoming")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Server.JWTSecret = "test-secret"
	cfg.Monitor.DebounceSeconds = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithHierarchical enables hierarchical layout on the test config.
func WithHierarchical() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Organize.Hierarchical = true
	}
}

// WithNamingEnforcement enables naming checks and auto-rename.
func WithNamingEnforcement(autoRename bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Organize.EnforceNaming = true
		cfg.Organize.AutoRename = autoRename
	}
}
