// Package ipc exposes daemon control over a Unix domain socket using
// JSON-RPC. The CLI is the only intended client; the socket lives next to
// the database so permissions follow the data directory.
package ipc
