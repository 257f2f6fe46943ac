package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	RootDir  string `toml:"root_dir"`
	WatchDir string `toml:"watch_dir"`
	LogDir   string `toml:"log_dir"`
	DataDir  string `toml:"data_dir"`
	APIBind  string `toml:"api_bind"`
}

// Organize contains settings for the categorization pipeline.
type Organize struct {
	Hierarchical    bool   `toml:"hierarchical"`
	DefaultCustomer string `toml:"default_customer"`
	EnforceNaming   bool   `toml:"enforce_naming"`
	AutoRename      bool   `toml:"auto_rename"`
	Recursive       bool   `toml:"recursive"`
	// Schedule is an optional cron expression for periodic sweeps of the
	// watch directory while the daemon runs.
	Schedule string `toml:"schedule"`
}

// Monitor contains settings for the debounced filesystem watcher.
type Monitor struct {
	Enabled         bool `toml:"enabled"`
	DebounceSeconds int  `toml:"debounce_seconds"`
}

// Server contains settings for the HTTP API.
type Server struct {
	Enabled         bool   `toml:"enabled"`
	JWTSecret       string `toml:"jwt_secret"`
	TokenTTLMinutes int    `toml:"token_ttl_minutes"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Organization   bool   `toml:"organization"`
	Violations     bool   `toml:"violations"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for steward.
//
// Configuration sections by subsystem:
//   - Paths: managed root, watch directory, log/data dirs, API bind address
//   - Organize: hierarchical mode, naming enforcement, sweep schedule
//   - Monitor: watcher toggle and debounce window
//   - Server: HTTP API toggle and JWT settings
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
//   - Categories: extension-to-category overrides
//   - Folders: category folder name overrides
type Config struct {
	Paths         Paths             `toml:"paths"`
	Organize      Organize          `toml:"organize"`
	Monitor       Monitor           `toml:"monitor"`
	Server        Server            `toml:"server"`
	Notifications Notifications     `toml:"notifications"`
	Logging       Logging           `toml:"logging"`
	Categories    map[string]string `toml:"categories"`
	Folders       map[string]string `toml:"folders"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/steward/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A .env file in the
// working directory is applied first so secrets can stay out of the TOML;
// STEWARD_JWT_SECRET and STEWARD_NTFY_TOPIC override their file values.
func Load(path string) (*Config, string, bool, error) {
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func applyEnvOverrides(cfg *Config) {
	if secret := strings.TrimSpace(os.Getenv("STEWARD_JWT_SECRET")); secret != "" {
		cfg.Server.JWTSecret = secret
	}
	if topic := strings.TrimSpace(os.Getenv("STEWARD_NTFY_TOPIC")); topic != "" {
		cfg.Notifications.NtfyTopic = topic
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("steward.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for operation. RootDir is
// created on a best-effort basis so the daemon can run when shared storage
// is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.RootDir) != "" {
		_ = os.MkdirAll(c.Paths.RootDir, 0o755)
	}
	return nil
}

// DatabasePath returns the SQLite database location under the data dir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "steward.db")
}

// WatchDir returns the monitored intake directory, falling back to the
// managed root when unset.
func (c *Config) WatchDirOrRoot() string {
	if dir := strings.TrimSpace(c.Paths.WatchDir); dir != "" {
		return dir
	}
	return c.Paths.RootDir
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
