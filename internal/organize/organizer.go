package organize

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"steward/internal/category"
	"steward/internal/config"
	"steward/internal/logging"
	"steward/internal/mover"
	"steward/internal/naming"
	"steward/internal/pattern"
	"steward/internal/services"
)

// Options adjusts a single pipeline run. Zero value means the configured
// behavior.
type Options struct {
	// Customer overrides any customer inferred from the filename or the
	// containing folder.
	Customer     string
	Hierarchical bool
	// Held files go to HOLDING for manual review instead of being guessed
	// at.
	EnforceNaming bool
	AutoRename    bool
	Recursive     bool
}

// Result describes what the pipeline decided for one file.
type Result struct {
	Source    string
	Category  category.Category
	Fields    pattern.Fields
	Verdict   naming.Verdict
	Held      bool
	HeldWhy   string
	Operation mover.Operation
}

// Stats aggregates one pipeline run.
type Stats struct {
	Processed   int
	Categorized int
	Held        int
	Renamed     int
	Errors      int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d processed, %d categorized, %d held, %d renamed, %d errors",
		s.Processed, s.Categorized, s.Held, s.Renamed, s.Errors)
}

// Organizer drives the scan, categorize, name, move pipeline against one
// managed root.
type Organizer struct {
	root      string
	table     *category.Table
	extractor *pattern.Extractor
	namer     *naming.Namer
	mover     *mover.Mover
	defaults  Options
	logger    *slog.Logger
	now       func() time.Time
}

// New builds an Organizer from configuration. The mover carries the
// dry-run decision.
func New(cfg *config.Config, mv *mover.Mover, logger *slog.Logger) *Organizer {
	extractor := pattern.NewExtractor()
	return &Organizer{
		root:      cfg.Paths.RootDir,
		table:     category.NewTable(cfg.Categories, cfg.Folders),
		extractor: extractor,
		namer:     naming.NewNamer(extractor),
		mover:     mv,
		defaults: Options{
			Customer:      cfg.Organize.DefaultCustomer,
			Hierarchical:  cfg.Organize.Hierarchical,
			EnforceNaming: cfg.Organize.EnforceNaming,
			AutoRename:    cfg.Organize.AutoRename,
			Recursive:     cfg.Organize.Recursive,
		},
		logger: logging.WithComponent(logger, "organize"),
		now:    time.Now,
	}
}

// Root returns the managed root directory.
func (o *Organizer) Root() string { return o.root }

// InitFolders creates the full folder taxonomy under the managed root.
func (o *Organizer) InitFolders() error {
	for _, folder := range o.table.Folders() {
		dir := filepath.Join(o.root, folder)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(services.ErrTransient, "organize", "init folders", fmt.Sprintf("failed to create %s", dir), err)
		}
	}
	o.logger.Info("folder taxonomy ready", logging.String("root", o.root))
	return nil
}

// File runs the pipeline for one file. The move outcome is recorded in the
// result; a per-file failure never panics or aborts callers iterating a
// batch.
func (o *Organizer) File(path string, opts Options) Result {
	opts = o.merge(opts)
	base := filepath.Base(path)

	res := Result{
		Source:   path,
		Category: o.table.Categorize(base),
		Fields:   o.extractor.Extract(base),
		Verdict:  o.namer.Check(base),
	}
	if opts.Customer != "" {
		res.Fields.Customer = pattern.CanonicalCustomer(opts.Customer)
	}

	newName := ""
	if opts.EnforceNaming && !res.Verdict.Compliant {
		switch {
		case opts.AutoRename && res.Verdict.Suggested != "":
			newName = res.Verdict.Suggested
		default:
			res.Held = true
			res.HeldWhy = res.Verdict.Violation
		}
	}

	destDir := ""
	if !res.Held {
		destDir = o.destination(&res, opts)
	}
	if res.Held {
		res.Category = category.Holding
		destDir = filepath.Join(o.root, o.table.Folder(category.Holding))
	}

	res.Operation = o.mover.Move(path, destDir, newName)
	o.logResult(res)
	return res
}

// destination resolves the target directory for a categorized file. In
// hierarchical mode files are grouped by customer and part; files whose
// fields cannot support the hierarchy are held instead of guessed at.
func (o *Organizer) destination(res *Result, opts Options) string {
	if !opts.Hierarchical {
		return filepath.Join(o.root, o.table.Folder(res.Category))
	}
	if res.Fields.Customer == "" {
		res.Held = true
		res.HeldWhy = "cannot determine customer for hierarchical layout"
		return ""
	}
	if !res.Fields.Complete() {
		res.Held = true
		res.HeldWhy = "cannot determine part number and revision for hierarchical layout"
		return ""
	}
	part := fmt.Sprintf("%s_REV-%s", res.Fields.PartNumber, res.Fields.Revision)
	return filepath.Join(o.root, res.Fields.Customer, part)
}

// Run scans dir and pushes every candidate through the pipeline.
func (o *Organizer) Run(dir string, opts Options) (Stats, []Result, error) {
	o.mover.Reset()
	opts = o.merge(opts)
	if dir == "" {
		dir = o.root
	}

	files, err := o.Scan(dir, opts.Recursive)
	if err != nil {
		return Stats{}, nil, err
	}

	var stats Stats
	results := make([]Result, 0, len(files))
	for _, file := range files {
		res := o.File(file, opts)
		results = append(results, res)
		stats.Processed++
		switch {
		case res.Operation.Err != nil:
			stats.Errors++
		case res.Held:
			stats.Held++
		default:
			stats.Categorized++
			if res.Operation.Outcome == mover.OutcomeRenamed || (res.Verdict.Suggested != "" && res.Operation.NewName != "") {
				stats.Renamed++
			}
		}
	}
	o.logger.Info("organize run finished",
		logging.String("directory", dir),
		logging.String("stats", stats.String()),
		logging.Bool("dry_run", o.mover.DryRun()),
	)
	return stats, results, nil
}

// Archive moves an entire folder into ARCHIVE under a timestamped name so
// repeated archives of the same job never collide.
func (o *Organizer) Archive(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "organize", "archive", "archive source not found", err)
	}
	if !info.IsDir() {
		return "", services.Wrap(services.ErrValidation, "organize", "archive", "archive source must be a directory", nil)
	}

	stamp := o.now().Format("20060102_150405")
	target := filepath.Join(o.root, o.table.Folder(category.Archive), fmt.Sprintf("%s_%s", filepath.Base(dir), stamp))

	if o.mover.DryRun() {
		o.logger.Info("would archive folder", logging.String("source", dir), logging.String("destination", target))
		return target, nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", services.Wrap(services.ErrTransient, "organize", "archive", "failed to create archive folder", err)
	}
	if err := os.Rename(dir, target); err != nil {
		return "", services.Wrap(services.ErrTransient, "organize", "archive", "failed to move folder into archive", err)
	}
	o.logger.Info("archived folder", logging.String("source", dir), logging.String("destination", target))
	return target, nil
}

// merge fills unset request options from the configured defaults. Booleans
// are ORed: a run can tighten behavior beyond the config but never loosen
// the configured enforcement.
func (o *Organizer) merge(opts Options) Options {
	if strings.TrimSpace(opts.Customer) == "" {
		opts.Customer = o.defaults.Customer
	}
	opts.Hierarchical = opts.Hierarchical || o.defaults.Hierarchical
	opts.EnforceNaming = opts.EnforceNaming || o.defaults.EnforceNaming
	opts.AutoRename = opts.AutoRename || o.defaults.AutoRename
	opts.Recursive = opts.Recursive || o.defaults.Recursive
	return opts
}

func (o *Organizer) logResult(res Result) {
	attrs := []logging.Attr{
		logging.String("file", res.Source),
		logging.String("category", string(res.Category)),
	}
	switch {
	case res.Operation.Err != nil:
		o.logger.Warn("organize failed", logging.Args(append(attrs, logging.Error(res.Operation.Err))...)...)
	case res.Held:
		o.logger.Info("file held for review", logging.Args(append(attrs, logging.String("reason", res.HeldWhy))...)...)
	default:
		o.logger.Info("file organized", logging.Args(append(attrs, logging.String("destination", res.Operation.Destination))...)...)
	}
}
