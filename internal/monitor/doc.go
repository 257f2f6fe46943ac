// Package monitor watches the intake directory for new files and reports
// them once they have stopped changing. Every filesystem event restarts a
// per-file quiet timer, so partially written files are never handed to the
// organizer mid-transfer.
package monitor
