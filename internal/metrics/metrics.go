// Package metrics exposes the daemon's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the counters tracked across the organize pipeline and
// the monitor. A fresh registry per instance keeps tests isolated.
type Metrics struct {
	registry *prometheus.Registry

	FilesOrganized prometheus.Counter
	FilesHeld      prometheus.Counter
	FilesRenamed   prometheus.Counter
	MoveErrors     prometheus.Counter
	WatchEvents    prometheus.Counter
}

// New builds a Metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		FilesOrganized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "steward_files_organized_total",
			Help: "Files moved into a category folder.",
		}),
		FilesHeld: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "steward_files_held_total",
			Help: "Files routed to HOLDING for manual review.",
		}),
		FilesRenamed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "steward_files_renamed_total",
			Help: "Files renamed to the canonical convention or for collision avoidance.",
		}),
		MoveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "steward_move_errors_total",
			Help: "Failed move operations.",
		}),
		WatchEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "steward_watch_events_total",
			Help: "Stabilized file events consumed from the monitor.",
		}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		m.FilesOrganized,
		m.FilesHeld,
		m.FilesRenamed,
		m.MoveErrors,
		m.WatchEvents,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
