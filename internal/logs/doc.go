// Package logs reads the daemon log file for the CLI. Tail supports
// offset-based incremental reads with bounded memory, negative offsets
// for "last N lines", and a polling follow mode for `steward logs -f`.
package logs
