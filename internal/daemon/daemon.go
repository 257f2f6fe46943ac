package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"steward/internal/config"
	"steward/internal/logging"
	"steward/internal/metrics"
	"steward/internal/notifications"
	"steward/internal/organize"
	"steward/internal/server"
	"steward/internal/store"
	"steward/internal/workflow"
)

// Daemon coordinates the background services and enforces single-instance
// execution via a lock file.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	workflow *workflow.Manager
	server   *server.Server
	logPath  string

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startedAt time.Time
	stopOnce  sync.Once
	stopped   chan struct{}
}

// ModuleInfo is a condensed module registration for status reporting.
type ModuleInfo struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"display_name"`
	Status      string     `json:"status"`
	LastRun     *time.Time `json:"last_run,omitempty"`
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool           `json:"running"`
	PID           int            `json:"pid"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	RootDir       string         `json:"root_dir"`
	WatchDir      string         `json:"watch_dir"`
	APIBind       string         `json:"api_bind,omitempty"`
	DatabasePath  string         `json:"database_path"`
	LockFilePath  string         `json:"lock_path"`
	Jobs          map[string]int `json:"jobs,omitempty"`
	Modules       []ModuleInfo   `json:"modules,omitempty"`
}

// New constructs a daemon around an opened store. Close releases the
// store along with everything the daemon started.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	m := metrics.New()
	notifier := notifications.NewService(cfg)
	wf := workflow.New(cfg, st, notifier, m, nil, logger)

	var srv *server.Server
	if cfg.Server.Enabled {
		srv = server.New(cfg, st, wf, m, logger)
		wf.SetHub(srv.Hub())
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "stewardd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    st,
		workflow: wf,
		server:   srv,
		logPath:  filepath.Join(cfg.Paths.LogDir, "steward.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		stopped:  make(chan struct{}),
	}, nil
}

// Start acquires the daemon lock and launches the workflow manager and,
// when enabled, the HTTP API. It returns once the services are running.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another steward daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.workflow.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("workflow stopped", logging.Error(err))
		}
	}()

	if d.server != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.server.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Error("http api stopped", logging.Error(err))
			}
		}()
	}

	d.startedAt = time.Now().UTC()
	d.running.Store(true)
	d.logger.Info("steward daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stopped is closed once Stop has been requested so the daemon process
// can exit instead of waiting for a signal.
func (d *Daemon) Stopped() <-chan struct{} { return d.stopped }

// Stop halts background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	defer d.stopOnce.Do(func() { close(d.stopped) })
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("steward daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status, including job counts and
// module registrations when the store is reachable.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		RootDir:      d.cfg.Paths.RootDir,
		WatchDir:     d.cfg.WatchDirOrRoot(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
	}
	if d.cfg.Server.Enabled {
		status.APIBind = d.cfg.Paths.APIBind
	}
	if status.Running {
		status.UptimeSeconds = int64(time.Since(d.startedAt).Seconds())
	}

	if stats, err := d.store.JobStats(ctx); err == nil {
		status.Jobs = make(map[string]int, len(stats))
		for jobStatus, count := range stats {
			status.Jobs[string(jobStatus)] = count
		}
	}
	if modules, err := d.store.ListModules(ctx); err == nil {
		status.Modules = make([]ModuleInfo, 0, len(modules))
		for _, module := range modules {
			status.Modules = append(status.Modules, ModuleInfo{
				Name:        module.Name,
				DisplayName: module.DisplayName,
				Status:      string(module.Status),
				LastRun:     module.LastRun,
			})
		}
	}
	return status
}

// OrganizeNow runs an immediate sweep of the watch directory.
func (d *Daemon) OrganizeNow(ctx context.Context, dryRun bool) (organize.Stats, error) {
	return d.workflow.OrganizeNow(ctx, dryRun)
}

// ListJobs returns jobs filtered by optional statuses.
func (d *Daemon) ListJobs(ctx context.Context, statuses []string) ([]*store.Job, error) {
	parsed := make([]store.JobStatus, 0, len(statuses))
	for _, s := range statuses {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			parsed = append(parsed, store.JobStatus(trimmed))
		}
	}
	return d.store.ListJobs(ctx, parsed...)
}

// RecentActivity returns the newest audit rows, optionally filtered by
// entity type.
func (d *Daemon) RecentActivity(ctx context.Context, entityType string, limit int) ([]*store.Activity, error) {
	return d.store.RecentActivity(ctx, entityType, limit)
}

// TestNotification sends a test push using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}
