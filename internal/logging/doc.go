// Package logging builds the slog loggers used across steward. It provides
// console and JSON handlers, attribute helpers, and component logger
// construction so every subsystem logs with the same field vocabulary.
package logging
