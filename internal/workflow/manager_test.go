package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"steward/internal/config"
	"steward/internal/logging"
	"steward/internal/store"
	"steward/internal/testsupport"
)

type recordingNotifier struct {
	organizeCompleted int
	filesOrganized    []string
	violations        []string
	held              []string
	errors            int
}

func (r *recordingNotifier) NotifyOrganizeCompleted(_ context.Context, _, _ string) error {
	r.organizeCompleted++
	return nil
}

func (r *recordingNotifier) NotifyFileOrganized(_ context.Context, filename, _ string) error {
	r.filesOrganized = append(r.filesOrganized, filename)
	return nil
}

func (r *recordingNotifier) NotifyNamingViolation(_ context.Context, filename, _ string) error {
	r.violations = append(r.violations, filename)
	return nil
}

func (r *recordingNotifier) NotifyFileHeld(_ context.Context, filename, _ string) error {
	r.held = append(r.held, filename)
	return nil
}

func (r *recordingNotifier) NotifyError(_ context.Context, _ error, _ string) error {
	r.errors++
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

func newManager(t *testing.T, opts ...testsupport.ConfigOption) (*Manager, *store.Store, *recordingNotifier) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	st := testsupport.MustOpenStore(t, cfg)
	notifier := &recordingNotifier{}
	mgr := New(cfg, st, notifier, nil, nil, logging.NewNop())
	if err := mgr.organizer.InitFolders(); err != nil {
		t.Fatalf("InitFolders: %v", err)
	}
	if err := os.MkdirAll(cfg.WatchDirOrRoot(), 0o755); err != nil {
		t.Fatalf("create watch dir: %v", err)
	}
	return mgr, st, notifier
}

func fileActivity(t *testing.T, st *store.Store) []*store.Activity {
	t.Helper()
	items, err := st.RecentActivity(context.Background(), "file", 0)
	if err != nil {
		t.Fatalf("RecentActivity: %v", err)
	}
	return items
}

func TestOrganizeNowMovesFilesAndRecordsActivity(t *testing.T) {
	mgr, st, notifier := newManager(t)
	ctx := context.Background()

	watch := mgr.cfg.WatchDirOrRoot()
	testsupport.WriteFile(t, filepath.Join(watch, "ABC-123_REV-A_housing.step"), 64)
	testsupport.WriteFile(t, filepath.Join(watch, "setup_sheet.pdf"), 64)

	stats, err := mgr.OrganizeNow(ctx, false)
	if err != nil {
		t.Fatalf("OrganizeNow: %v", err)
	}
	if stats.Processed != 2 || stats.Categorized != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(watch, "ABC-123_REV-A_housing.step")); !os.IsNotExist(err) {
		t.Fatal("source file still in watch dir")
	}

	items := fileActivity(t, st)
	if len(items) != 2 {
		t.Fatalf("activity rows = %d, want 2", len(items))
	}
	for _, item := range items {
		if item.Action != "moved" || item.Actor != "organizer" {
			t.Fatalf("activity = %+v", item)
		}
	}

	module, err := st.ModuleByName(ctx, "organizer")
	if err != nil || module == nil {
		t.Fatalf("ModuleByName: %v %v", module, err)
	}
	if module.LastRun == nil {
		t.Fatal("organizer run not recorded")
	}
	if got := module.Metrics["processed"]; got != float64(2) {
		t.Fatalf("processed metric = %v", got)
	}

	if notifier.organizeCompleted != 1 || len(notifier.filesOrganized) != 2 {
		t.Fatalf("notifier = %+v", notifier)
	}
}

func TestOrganizeNowDryRunTouchesNothing(t *testing.T) {
	mgr, st, notifier := newManager(t)
	ctx := context.Background()

	watch := mgr.cfg.WatchDirOrRoot()
	testsupport.WriteFile(t, filepath.Join(watch, "ABC-123_REV-A_housing.step"), 64)

	stats, err := mgr.OrganizeNow(ctx, true)
	if err != nil {
		t.Fatalf("OrganizeNow: %v", err)
	}
	if stats.Processed != 1 || stats.Categorized != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if _, err := os.Stat(filepath.Join(watch, "ABC-123_REV-A_housing.step")); err != nil {
		t.Fatalf("dry run moved the file: %v", err)
	}
	if items := fileActivity(t, st); len(items) != 0 {
		t.Fatalf("dry run wrote %d activity rows", len(items))
	}
	if notifier.organizeCompleted != 0 || len(notifier.filesOrganized) != 0 {
		t.Fatalf("dry run notified: %+v", notifier)
	}
}

func TestHeldFilesNotifyViolations(t *testing.T) {
	mgr, st, notifier := newManager(t, testsupport.WithNamingEnforcement(false))
	ctx := context.Background()

	watch := mgr.cfg.WatchDirOrRoot()
	testsupport.WriteFile(t, filepath.Join(watch, "meeting notes.pdf"), 64)

	stats, err := mgr.OrganizeNow(ctx, false)
	if err != nil {
		t.Fatalf("OrganizeNow: %v", err)
	}
	if stats.Held != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(notifier.violations) != 1 || notifier.violations[0] != "meeting notes.pdf" {
		t.Fatalf("violations = %v", notifier.violations)
	}

	items := fileActivity(t, st)
	if len(items) != 1 || items[0].Action != "held" {
		t.Fatalf("activity = %+v", items)
	}
}

func TestInactiveOrganizerLeavesFilesAlone(t *testing.T) {
	mgr, st, _ := newManager(t)
	ctx := context.Background()

	if err := st.UpsertModule(ctx, &store.Module{
		Name:        "organizer",
		DisplayName: "File Organizer",
		Status:      store.ModuleInactive,
	}); err != nil {
		t.Fatalf("UpsertModule: %v", err)
	}

	watch := mgr.cfg.WatchDirOrRoot()
	path := filepath.Join(watch, "ABC-123_REV-A_housing.step")
	testsupport.WriteFile(t, filepath.Join(watch, "ABC-123_REV-A_housing.step"), 64)

	mgr.processFile(ctx, path)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("inactive organizer moved the file: %v", err)
	}
	if items := fileActivity(t, st); len(items) != 0 {
		t.Fatalf("inactive organizer wrote activity: %+v", items)
	}
}

func TestProcessFileAuditsRenames(t *testing.T) {
	mgr, st, notifier := newManager(t, testsupport.WithNamingEnforcement(true))
	ctx := context.Background()

	watch := mgr.cfg.WatchDirOrRoot()
	path := filepath.Join(watch, "abc-123 rev a housing.step")
	testsupport.WriteFile(t, path, 64)

	mgr.processFile(ctx, path)

	items := fileActivity(t, st)
	if len(items) != 1 || items[0].Action != "renamed" {
		t.Fatalf("activity = %+v", items)
	}
	if items[0].Details["new_name"] != "ABC-123_REV-A_housing.step" {
		t.Fatalf("details = %+v", items[0].Details)
	}
	if len(notifier.filesOrganized) != 1 {
		t.Fatalf("notifier = %+v", notifier)
	}
}

func TestWatchingRootNeverReprocessesOrganizedFiles(t *testing.T) {
	// No separate watch dir: the monitor falls back to the managed root,
	// so move events fire inside the taxonomy folders themselves.
	mgr, st, _ := newManager(t, func(cfg *config.Config) {
		cfg.Paths.WatchDir = ""
	})
	ctx := context.Background()

	root := mgr.cfg.WatchDirOrRoot()
	path := filepath.Join(root, "ABC-123_REV-A_housing.step")
	testsupport.WriteFile(t, path, 64)

	mgr.processFile(ctx, path)

	organized := filepath.Join(root, "CAD", "ABC-123_REV-A_housing.step")
	if _, err := os.Stat(organized); err != nil {
		t.Fatalf("file not organized: %v", err)
	}

	mgr.processFile(ctx, organized)
	mgr.processFile(ctx, organized)

	entries, err := os.ReadDir(filepath.Join(root, "CAD"))
	if err != nil {
		t.Fatalf("read CAD: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "ABC-123_REV-A_housing.step" {
		t.Fatalf("organized file was renamed again: %v", entries)
	}
	if items := fileActivity(t, st); len(items) != 1 {
		t.Fatalf("activity rows = %d, want 1", len(items))
	}
}

func TestScratchFilesAreNotDispatched(t *testing.T) {
	mgr, st, _ := newManager(t)
	ctx := context.Background()

	watch := mgr.cfg.WatchDirOrRoot()
	path := filepath.Join(watch, "housing.step.part")
	testsupport.WriteFile(t, path, 64)

	mgr.processFile(ctx, path)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("partial download was moved: %v", err)
	}
	if items := fileActivity(t, st); len(items) != 0 {
		t.Fatalf("scratch file wrote activity: %+v", items)
	}
}

func TestRegisterModulesKeepsExistingStatus(t *testing.T) {
	mgr, st, _ := newManager(t)
	ctx := context.Background()

	if err := st.UpsertModule(ctx, &store.Module{
		Name:        "organizer",
		DisplayName: "File Organizer",
		Status:      store.ModuleInactive,
	}); err != nil {
		t.Fatalf("UpsertModule: %v", err)
	}

	mgr.registerModules(ctx)

	organizer, err := st.ModuleByName(ctx, "organizer")
	if err != nil || organizer == nil {
		t.Fatalf("ModuleByName: %v %v", organizer, err)
	}
	if organizer.Status != store.ModuleInactive {
		t.Fatalf("registration overwrote status: %s", organizer.Status)
	}

	monitorModule, err := st.ModuleByName(ctx, "monitor")
	if err != nil || monitorModule == nil {
		t.Fatalf("monitor not registered: %v %v", monitorModule, err)
	}
}
