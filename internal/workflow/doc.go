// Package workflow runs the daemon's processing loop: it consumes
// stabilized file events from the monitor, drives the organize pipeline,
// records audit rows, updates metrics, and publishes notifications. All
// file processing happens on one goroutine.
package workflow
