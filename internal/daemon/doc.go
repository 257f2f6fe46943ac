// Package daemon ties the long-running services together: the workflow
// manager, the HTTP API, and the SQLite store. A lock file in the data
// directory enforces a single daemon instance per machine.
package daemon
