package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"steward/internal/config"
	"steward/internal/logging"
	"steward/internal/metrics"
	"steward/internal/monitor"
	"steward/internal/mover"
	"steward/internal/notifications"
	"steward/internal/organize"
	"steward/internal/server"
	"steward/internal/store"
)

// Manager owns the daemon's background processing. Construct with New,
// then Start blocks until the context is cancelled.
type Manager struct {
	cfg       *config.Config
	store     *store.Store
	organizer *organize.Organizer
	preview   *organize.Organizer
	monitor   *monitor.Monitor
	notifier  notifications.Service
	metrics   *metrics.Metrics
	hub       *server.Hub
	logger    *slog.Logger

	// Serializes manual, scheduled, and monitor-driven runs so two sweeps
	// never race over the same files.
	runMu sync.Mutex
}

// New wires the manager. The hub may be nil when the HTTP API is disabled.
func New(cfg *config.Config, st *store.Store, notifier notifications.Service, m *metrics.Metrics, hub *server.Hub, logger *slog.Logger) *Manager {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	if m == nil {
		m = metrics.New()
	}
	mgr := &Manager{
		cfg:       cfg,
		store:     st,
		organizer: organize.New(cfg, mover.New(false, logger), logger),
		preview:   organize.New(cfg, mover.New(true, logger), logger),
		notifier:  notifier,
		metrics:   m,
		hub:       hub,
		logger:    logging.WithComponent(logger, "workflow"),
	}
	if cfg.Monitor.Enabled {
		debounce := time.Duration(cfg.Monitor.DebounceSeconds) * time.Second
		mgr.monitor = monitor.New(cfg.WatchDirOrRoot(), cfg.Organize.Recursive, debounce, logger)
	}
	return mgr
}

// SetHub attaches the websocket hub used for event broadcasts. Must be
// called before Start.
func (m *Manager) SetHub(hub *server.Hub) { m.hub = hub }

// Start runs the monitor loop and scheduled sweeps until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.organizer.InitFolders(); err != nil {
		return err
	}
	m.registerModules(ctx)

	var wg sync.WaitGroup

	if m.monitor != nil {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := m.monitor.Start(ctx); err != nil && ctx.Err() == nil {
				m.logger.Error("monitor stopped", logging.Error(err))
			}
		}()
		go func() {
			defer wg.Done()
			m.consumeEvents(ctx)
		}()
	}

	if schedule := m.cfg.Organize.Schedule; schedule != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(schedule, func() {
			if _, err := m.OrganizeNow(ctx, false); err != nil {
				m.logger.Error("scheduled organize failed", logging.Error(err))
			}
		}); err != nil {
			m.logger.Error("invalid organize schedule",
				logging.String("schedule", schedule),
				logging.Error(err),
			)
		} else {
			scheduler.Start()
			defer scheduler.Stop()
			m.logger.Info("organize sweeps scheduled", logging.String("schedule", schedule))
		}
	}

	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

// consumeEvents is the single processing goroutine for stabilized files.
func (m *Manager) consumeEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-m.monitor.Events():
			if !ok {
				return
			}
			m.metrics.WatchEvents.Inc()
			m.processFile(ctx, path)
		}
	}
}

func (m *Manager) processFile(ctx context.Context, path string) {
	if m.organizer.Excluded(path) {
		m.logger.Debug("ignoring excluded path", logging.String("file", path))
		return
	}
	if !m.moduleActive(ctx, "organizer") {
		m.logger.Info("organizer inactive, leaving file in place", logging.String("file", path))
		return
	}

	m.runMu.Lock()
	res := m.organizer.File(path, organize.Options{})
	m.runMu.Unlock()

	m.recordResult(ctx, res)
}

// OrganizeNow sweeps the watch directory on demand. Dry runs compute
// decisions without touching the filesystem or the audit trail.
func (m *Manager) OrganizeNow(ctx context.Context, dryRun bool) (organize.Stats, error) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	organizer := m.organizer
	if dryRun {
		organizer = m.preview
	}

	dir := m.cfg.WatchDirOrRoot()
	stats, results, err := organizer.Run(dir, organize.Options{})
	if err != nil {
		m.metrics.MoveErrors.Inc()
		_ = m.notifier.NotifyError(ctx, err, "organize")
		return organize.Stats{}, err
	}
	if dryRun {
		return stats, nil
	}

	for _, res := range results {
		m.recordResult(ctx, res)
	}
	if err := m.store.TouchModuleRun(ctx, "organizer", map[string]any{
		"processed":   stats.Processed,
		"categorized": stats.Categorized,
		"held":        stats.Held,
		"renamed":     stats.Renamed,
		"errors":      stats.Errors,
	}); err != nil {
		m.logger.Warn("failed to record organizer run", logging.Error(err))
	}
	if stats.Processed > 0 {
		_ = m.notifier.NotifyOrganizeCompleted(ctx, dir, stats.String())
	}
	return stats, nil
}

// recordResult writes the audit row, bumps counters, and publishes
// notifications for one pipeline decision.
func (m *Manager) recordResult(ctx context.Context, res organize.Result) {
	if res.Operation.Outcome == mover.OutcomeUnchanged {
		return
	}
	details := map[string]any{
		"source":   res.Source,
		"category": string(res.Category),
	}
	action := "moved"
	switch {
	case res.Operation.Err != nil:
		action = "failed"
		details["error"] = res.Operation.Err.Error()
		m.metrics.MoveErrors.Inc()
		_ = m.notifier.NotifyError(ctx, res.Operation.Err, "organize")
	case res.Held:
		action = "held"
		details["reason"] = res.HeldWhy
		m.metrics.FilesHeld.Inc()
		if res.Verdict.Violation != "" {
			_ = m.notifier.NotifyNamingViolation(ctx, res.Verdict.Filename, res.Verdict.Violation)
		} else {
			_ = m.notifier.NotifyFileHeld(ctx, res.Verdict.Filename, res.HeldWhy)
		}
	default:
		details["destination"] = res.Operation.Destination
		m.metrics.FilesOrganized.Inc()
		if res.Operation.NewName != "" {
			action = "renamed"
			details["new_name"] = res.Operation.NewName
			m.metrics.FilesRenamed.Inc()
		}
		_ = m.notifier.NotifyFileOrganized(ctx, res.Verdict.Filename, res.Operation.Destination)
	}

	activity := &store.Activity{
		EntityType: "file",
		EntityID:   res.Verdict.Filename,
		Action:     action,
		Actor:      "organizer",
		Details:    details,
	}
	if err := m.store.RecordActivity(ctx, activity); err != nil {
		m.logger.Warn("failed to record file activity", logging.Error(err))
	}
	if m.hub != nil {
		m.hub.Broadcast(server.Event{
			Type:       "activity",
			EntityType: "file",
			EntityID:   res.Verdict.Filename,
			Action:     action,
			Actor:      "organizer",
			Details:    details,
		})
	}
}

func (m *Manager) moduleActive(ctx context.Context, name string) bool {
	module, err := m.store.ModuleByName(ctx, name)
	if err != nil {
		m.logger.Warn("module lookup failed", logging.String("module", name), logging.Error(err))
		return true
	}
	if module == nil {
		return true
	}
	return module.Status == store.ModuleActive
}

// registerModules seeds the module registry so toggles have something to
// flip on first boot. Existing statuses are preserved.
func (m *Manager) registerModules(ctx context.Context) {
	registrations := []store.Module{
		{Name: "organizer", DisplayName: "File Organizer", Version: "1.0.0", Status: store.ModuleActive},
		{Name: "monitor", DisplayName: "Directory Monitor", Version: "1.0.0", Status: store.ModuleActive},
	}
	for _, reg := range registrations {
		existing, err := m.store.ModuleByName(ctx, reg.Name)
		if err != nil {
			m.logger.Warn("module registry check failed", logging.String("module", reg.Name), logging.Error(err))
			continue
		}
		if existing != nil {
			continue
		}
		if err := m.store.UpsertModule(ctx, &reg); err != nil {
			m.logger.Warn("module registration failed", logging.String("module", reg.Name), logging.Error(err))
		}
	}
}
