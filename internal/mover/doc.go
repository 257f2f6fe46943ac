// Package mover performs guarded filesystem moves. Nothing is ever deleted
// or overwritten: destination collisions are resolved with a timestamp
// suffix, dry-run reports intent without touching the filesystem, and
// per-file failures never abort the remaining batch.
package mover
