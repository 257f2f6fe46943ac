// Command steward is the shop-floor CLI. It runs the organize pipeline
// directly for one-shot sweeps and talks to the stewardd daemon over its
// Unix socket for status, jobs, audit history, and log tailing.
package main
