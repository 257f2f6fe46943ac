package mover

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"steward/internal/fileutil"
	"steward/internal/logging"
	"steward/internal/services"
)

// Outcome classifies what happened to a single file.
type Outcome string

const (
	OutcomeMoved     Outcome = "moved"
	OutcomeRenamed   Outcome = "renamed" // moved under a collision-avoiding name
	OutcomeSkipped   Outcome = "skipped"
	OutcomeUnchanged Outcome = "unchanged" // already at its destination
)

// Operation records one guarded move, attempted or simulated.
type Operation struct {
	Source      string
	Destination string
	Outcome     Outcome
	DryRun      bool
	// NewName is set when the file was renamed in place before or during
	// the move (naming enforcement or collision suffix).
	NewName string
	Err     error
}

// Mover issues collision-safe moves. All moves go through one Mover on a
// single processing goroutine, so destination probing needs no locking.
type Mover struct {
	dryRun bool
	// reserved holds destinations claimed by earlier dry-run moves so a
	// simulated batch reports the same collision renames a real one would.
	reserved map[string]struct{}
	logger   *slog.Logger
	now      func() time.Time
}

// New constructs a Mover. When dryRun is set every operation is computed
// and logged but the filesystem is left untouched.
func New(dryRun bool, logger *slog.Logger) *Mover {
	m := &Mover{
		dryRun: dryRun,
		logger: logging.WithComponent(logger, "mover"),
		now:    time.Now,
	}
	if dryRun {
		m.reserved = make(map[string]struct{})
	}
	return m
}

// Reset clears destinations reserved by earlier dry-run moves so a fresh
// simulation starts from the on-disk state.
func (m *Mover) Reset() {
	if m.reserved != nil {
		m.reserved = make(map[string]struct{})
	}
}

// DryRun reports whether the mover is in simulation mode.
func (m *Mover) DryRun() bool { return m.dryRun }

// Move relocates source into destDir, optionally under newName (empty
// keeps the original base name). The returned Operation always describes
// the decision, even on failure.
func (m *Mover) Move(source, destDir, newName string) Operation {
	op := Operation{Source: source, DryRun: m.dryRun, NewName: newName}

	info, err := os.Stat(source)
	if err != nil {
		op.Outcome = OutcomeSkipped
		op.Err = services.Wrap(services.ErrNotFound, "mover", "stat source", "source file not found", err)
		m.logOp(op)
		return op
	}
	if info.IsDir() {
		op.Outcome = OutcomeSkipped
		op.Err = services.Wrap(services.ErrValidation, "mover", "stat source", "source is a directory", nil)
		m.logOp(op)
		return op
	}

	name := strings.TrimSpace(newName)
	if name == "" {
		name = filepath.Base(source)
	}

	target := filepath.Join(destDir, name)
	if filepath.Clean(target) == filepath.Clean(source) {
		op.Destination = target
		op.Outcome = OutcomeUnchanged
		op.NewName = ""
		m.logOp(op)
		return op
	}
	if collided := m.resolveCollision(target); collided != target {
		target = collided
		op.Outcome = OutcomeRenamed
		op.NewName = filepath.Base(target)
	} else {
		op.Outcome = OutcomeMoved
	}
	op.Destination = target

	if m.dryRun {
		m.reserved[target] = struct{}{}
		m.logOp(op)
		return op
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		op.Outcome = OutcomeSkipped
		op.Err = services.Wrap(services.ErrTransient, "mover", "ensure destination", fmt.Sprintf("failed to create %s", destDir), err)
		m.logOp(op)
		return op
	}

	if err := m.rename(source, target); err != nil {
		op.Outcome = OutcomeSkipped
		op.Err = services.Wrap(services.ErrTransient, "mover", "move file", "failed to move file", err)
	}
	m.logOp(op)
	return op
}

// MoveBatch applies Move to every request in order, collecting per-item
// results. A failed item never aborts the remainder.
func (m *Mover) MoveBatch(requests []Request) []Operation {
	ops := make([]Operation, 0, len(requests))
	for _, req := range requests {
		ops = append(ops, m.Move(req.Source, req.DestDir, req.NewName))
	}
	return ops
}

// Request describes one batch entry.
type Request struct {
	Source  string
	DestDir string
	NewName string
}

// resolveCollision returns a destination path that is neither on disk nor
// reserved by a dry-run move. The first collision gets a timestamp suffix;
// same-second collisions get an additional counter. The probe is safe
// without locking because all moves are issued from one goroutine.
func (m *Mover) resolveCollision(target string) string {
	if !m.occupied(target) {
		return target
	}
	dir := filepath.Dir(target)
	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(filepath.Base(target), ext)
	stamp := m.now().Format("20060102_150405")

	candidate := filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, stamp, ext))
	if !m.occupied(candidate) {
		return candidate
	}
	for n := 2; ; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%s_%d%s", stem, stamp, n, ext))
		if !m.occupied(candidate) {
			return candidate
		}
	}
}

func (m *Mover) occupied(path string) bool {
	if _, ok := m.reserved[path]; ok {
		return true
	}
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

// rename moves the file, falling back to verified copy plus remove when the
// destination is on a different filesystem.
func (m *Mover) rename(source, target string) error {
	err := os.Rename(source, target)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if copyErr := fileutil.CopyFileVerified(source, target); copyErr != nil {
			return copyErr
		}
		if removeErr := os.Remove(source); removeErr != nil {
			m.logger.Warn("failed to remove source after cross-device copy",
				logging.String("source", source),
				logging.Error(removeErr),
			)
		}
		return nil
	}
	return err
}

func (m *Mover) logOp(op Operation) {
	attrs := []logging.Attr{
		logging.String("source", op.Source),
		logging.String("destination", op.Destination),
		logging.String("outcome", string(op.Outcome)),
		logging.Bool("dry_run", op.DryRun),
	}
	switch {
	case op.Err != nil:
		m.logger.Warn("move failed", logging.Args(append(attrs, logging.Error(op.Err))...)...)
	case op.Outcome == OutcomeUnchanged:
		m.logger.Info("file already at destination", logging.Args(attrs...)...)
	case op.DryRun:
		m.logger.Info("would move file", logging.Args(attrs...)...)
	case op.Outcome == OutcomeRenamed:
		m.logger.Info("moved file with collision rename", logging.Args(attrs...)...)
	default:
		m.logger.Info("moved file", logging.Args(attrs...)...)
	}
}
