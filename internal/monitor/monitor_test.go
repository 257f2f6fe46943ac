package monitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"steward/internal/logging"
)

func startMonitor(t *testing.T, dir string, recursive bool, debounce time.Duration) *Monitor {
	t.Helper()
	m := New(dir, recursive, debounce, logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Give the watcher a moment to register before the test writes files.
	time.Sleep(100 * time.Millisecond)
	return m
}

func waitForEvent(t *testing.T, m *Monitor, timeout time.Duration) string {
	t.Helper()
	select {
	case path := <-m.Events():
		return path
	case <-time.After(timeout):
		t.Fatal("timed out waiting for stabilized file")
		return ""
	}
}

func TestStableFileIsReported(t *testing.T) {
	dir := t.TempDir()
	m := startMonitor(t, dir, false, 50*time.Millisecond)

	path := filepath.Join(dir, "ABC-123_REV-A_housing.step")
	if err := os.WriteFile(path, []byte("solid"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if got := waitForEvent(t, m, 3*time.Second); got != path {
		t.Fatalf("stabilized path = %q, want %q", got, path)
	}
}

func TestWritesResetQuietWindow(t *testing.T) {
	dir := t.TempDir()
	m := startMonitor(t, dir, false, 200*time.Millisecond)

	path := filepath.Join(dir, "10045-01.nc")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Keep writing inside the quiet window; no event may fire yet.
	for range 4 {
		if _, err := f.WriteString("G0 X0\n"); err != nil {
			t.Fatalf("write: %v", err)
		}
		_ = f.Sync()
		select {
		case got := <-m.Events():
			t.Fatalf("file reported stable while still being written: %q", got)
		case <-time.After(80 * time.Millisecond):
		}
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := waitForEvent(t, m, 3*time.Second); got != path {
		t.Fatalf("stabilized path = %q, want %q", got, path)
	}
}

func TestRemovedFileIsNotReported(t *testing.T) {
	dir := t.TempDir()
	m := startMonitor(t, dir, false, 300*time.Millisecond)

	path := filepath.Join(dir, "transient.pdf")
	if err := os.WriteFile(path, []byte("doc"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	select {
	case got := <-m.Events():
		t.Fatalf("removed file was reported: %q", got)
	case <-time.After(700 * time.Millisecond):
	}
}

func TestHiddenFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	m := startMonitor(t, dir, false, 50*time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, ".steward.tmp"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-m.Events():
		t.Fatalf("hidden file was reported: %q", got)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestRecursiveWatchPicksUpNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	m := startMonitor(t, dir, true, 50*time.Millisecond)

	sub := filepath.Join(dir, "Acme Corp")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// Allow the create event to arm the new watch.
	time.Sleep(150 * time.Millisecond)

	path := filepath.Join(sub, "AC-100_REV-B_bracket.sldprt")
	if err := os.WriteFile(path, []byte("solid"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if got := waitForEvent(t, m, 3*time.Second); got != path {
		t.Fatalf("stabilized path = %q, want %q", got, path)
	}
}
