// Package notifications delivers push notifications about organize runs,
// naming violations, and errors via ntfy. When no topic is configured a
// noop implementation is returned so callers never need nil checks.
package notifications
