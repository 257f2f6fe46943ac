// Package server exposes the HTTP API: authentication, job/task/user CRUD,
// module toggles, organize-now, a websocket event feed, and Prometheus
// metrics.
package server
