package daemon_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"steward/internal/daemon"
	"steward/internal/logging"
	"steward/internal/testsupport"
)

func newDaemon(t *testing.T) (*daemon.Daemon, func() *daemon.Daemon) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	if err := os.MkdirAll(cfg.WatchDirOrRoot(), 0o755); err != nil {
		t.Fatalf("create watch dir: %v", err)
	}

	d, err := daemon.New(cfg, st, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	second := func() *daemon.Daemon {
		other, err := daemon.New(cfg, st, logging.NewNop())
		if err != nil {
			t.Fatalf("daemon.New second: %v", err)
		}
		return other
	}
	return d, second
}

func TestDaemonLockPreventsSecondInstance(t *testing.T) {
	d, second := newDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	other := second()
	t.Cleanup(func() { _ = other.Close() })
	if err := other.Start(ctx); err == nil {
		other.Stop()
		t.Fatal("second instance acquired the lock")
	} else if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("unexpected error: %v", err)
	}

	d.Stop()
	if err := other.Start(ctx); err != nil {
		t.Fatalf("Start after release: %v", err)
	}
	other.Stop()
}

func TestDaemonStatusReportsState(t *testing.T) {
	d, _ := newDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	status := d.Status(ctx)
	if status.Running {
		t.Fatal("daemon reported running before Start")
	}
	if filepath.Base(status.DatabasePath) != "steward.db" {
		t.Fatalf("database path = %s", status.DatabasePath)
	}

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Module registration happens on the workflow goroutine.
	deadline := time.Now().Add(3 * time.Second)
	for {
		status = d.Status(ctx)
		if len(status.Modules) >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !status.Running || status.PID <= 0 {
		t.Fatalf("status = %+v", status)
	}
	if len(status.Modules) < 2 {
		t.Fatalf("modules = %+v", status.Modules)
	}
	d.Stop()

	if d.Status(ctx).Running {
		t.Fatal("daemon reported running after Stop")
	}
}

func TestDaemonOrganizeNowDelegates(t *testing.T) {
	d, _ := newDaemon(t)
	ctx := context.Background()

	status := d.Status(ctx)
	testsupport.WriteFile(t, filepath.Join(status.WatchDir, "ABC-123_REV-A_housing.step"), 64)

	stats, err := d.OrganizeNow(ctx, true)
	if err != nil {
		t.Fatalf("OrganizeNow: %v", err)
	}
	if stats.Processed != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestDaemonTestNotificationWithoutTopic(t *testing.T) {
	d, _ := newDaemon(t)

	sent, message, err := d.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if sent || !strings.Contains(message, "not configured") {
		t.Fatalf("sent=%v message=%q", sent, message)
	}
}
