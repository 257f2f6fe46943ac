package monitor

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"steward/internal/logging"
	"steward/internal/services"
)

// Monitor debounces filesystem events into stable-file notifications.
// A file is considered stable once no write, create, or rename event has
// touched it for the configured quiet window.
type Monitor struct {
	watchDir  string
	recursive bool
	debounce  time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer

	stable chan string
	done   chan struct{}
}

// New builds a Monitor over watchDir. Stable files are delivered on the
// Events channel until the context passed to Start is cancelled.
func New(watchDir string, recursive bool, debounce time.Duration, logger *slog.Logger) *Monitor {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &Monitor{
		watchDir:  watchDir,
		recursive: recursive,
		debounce:  debounce,
		logger:    logging.WithComponent(logger, "monitor"),
		pending:   make(map[string]*time.Timer),
		stable:    make(chan string, 64),
		done:      make(chan struct{}),
	}
}

// Events returns the channel of stabilized file paths.
func (m *Monitor) Events() <-chan string { return m.stable }

// Start blocks, translating raw filesystem events into stabilized paths
// until ctx is cancelled. Pending quiet timers are abandoned on shutdown;
// files they covered are picked up by the next startup scan.
func (m *Monitor) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "monitor", "create watcher", "failed to initialize filesystem watcher", err)
	}
	defer watcher.Close()
	defer m.shutdown()

	if err := m.addWatches(watcher, m.watchDir); err != nil {
		return err
	}
	m.logger.Info("watching for incoming files",
		logging.String("directory", m.watchDir),
		logging.Bool("recursive", m.recursive),
		logging.Duration("quiet_window", m.debounce),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			m.handleEvent(watcher, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn("watcher error", logging.Error(err))
		}
	}
}

func (m *Monitor) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Remove):
		m.cancel(event.Name)
	case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Write), event.Op.Has(fsnotify.Rename):
		info, err := os.Stat(event.Name)
		if err != nil {
			// Renamed away or already gone.
			m.cancel(event.Name)
			return
		}
		if info.IsDir() {
			if m.recursive && event.Op.Has(fsnotify.Create) {
				if err := m.addWatches(watcher, event.Name); err != nil {
					m.logger.Warn("failed to watch new directory",
						logging.String("directory", event.Name),
						logging.Error(err),
					)
				}
			}
			return
		}
		m.schedule(event.Name)
	}
}

// schedule arms (or re-arms) the quiet timer for path. Each fresh event
// pushes stability out by the full window.
func (m *Monitor) schedule(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if timer, ok := m.pending[path]; ok {
		timer.Stop()
	}
	m.pending[path] = time.AfterFunc(m.debounce, func() { m.settle(path) })
}

func (m *Monitor) cancel(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if timer, ok := m.pending[path]; ok {
		timer.Stop()
		delete(m.pending, path)
	}
}

func (m *Monitor) settle(path string) {
	m.mu.Lock()
	delete(m.pending, path)
	m.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	select {
	case m.stable <- path:
		m.logger.Info("file stabilized", logging.String("file", path))
	case <-m.done:
	}
}

func (m *Monitor) shutdown() {
	m.mu.Lock()
	for path, timer := range m.pending {
		timer.Stop()
		delete(m.pending, path)
	}
	m.mu.Unlock()
	close(m.done)
}

func (m *Monitor) addWatches(watcher *fsnotify.Watcher, root string) error {
	if !m.recursive {
		if err := watcher.Add(root); err != nil {
			return services.Wrap(services.ErrConfiguration, "monitor", "add watch", "failed to watch directory", err)
		}
		return nil
	}
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return services.Wrap(services.ErrConfiguration, "monitor", "add watch", "failed to watch directory", err)
		}
		return nil
	})
}
