// Package store persists shop state in SQLite: users, jobs, tasks, module
// registrations, and the append-only activity log that doubles as the file
// movement audit trail.
package store
