// Package config loads, normalizes, and validates steward's TOML
// configuration. Every component receives an explicit *Config at
// construction; there is no process-wide configuration state.
package config
