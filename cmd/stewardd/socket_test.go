package main

import (
	"path/filepath"
	"testing"

	"steward/internal/config"
)

func TestResolveSocketPath(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = "/var/lib/steward"

	if got := resolveSocketPath(&cfg, ""); got != filepath.Join("/var/lib/steward", "steward.sock") {
		t.Fatalf("resolveSocketPath default = %s", got)
	}
	if got := resolveSocketPath(&cfg, " /tmp/custom.sock "); got != "/tmp/custom.sock" {
		t.Fatalf("resolveSocketPath flag = %s", got)
	}
	if got := resolveSocketPath(nil, ""); got != "steward.sock" {
		t.Fatalf("resolveSocketPath nil cfg = %s", got)
	}
}
