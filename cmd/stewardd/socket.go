package main

import (
	"path/filepath"
	"strings"

	"steward/internal/config"
)

// resolveSocketPath prefers an explicit flag value and otherwise places
// the socket next to the database in the data directory.
func resolveSocketPath(cfg *config.Config, flagValue string) string {
	if socket := strings.TrimSpace(flagValue); socket != "" {
		return socket
	}
	if cfg == nil {
		return "steward.sock"
	}
	return filepath.Join(cfg.Paths.DataDir, "steward.sock")
}
