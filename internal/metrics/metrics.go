// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the batch pipeline.
//
// The package is intentionally minimal and opinionated:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data.
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - It mirrors the sink abstraction pattern used elsewhere in the project,
//     allowing the rest of the codebase to depend only on this interface
//     while keeping concrete metric systems isolated in subpackages.
//
// The primary use case is instrumentation of the batch stages (read, build,
// write) without coupling the pipeline logic to a specific metrics system
// such as Prometheus or Datadog.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
// It is intentionally generic so we can plug in Prometheus, Datadog, etc.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep is a convenience for the common pattern:
// measure latency + success/failure per batch step.
//
// Typical steps: "read_catalog", "read_activity", and one "write_<table>"
// per output table.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter("lake_step_total", 1, lbls)
	backend.ObserveHistogram("lake_step_duration_seconds", d.Seconds(), lbls)
}

// RecordTableRows records the number of rows materialized for one output
// table in a run.
func RecordTableRows(job, tbl string, rows int64) {
	if rows <= 0 {
		return
	}
	backend.IncCounter("lake_table_rows_total", float64(rows), Labels{
		"job":   job,
		"table": tbl,
	})
}

// RecordSourceRows records the number of raw records loaded for one record
// family ("song_data" or "log_data").
func RecordSourceRows(job, family string, rows int64) {
	if rows <= 0 {
		return
	}
	backend.IncCounter("lake_source_rows_total", float64(rows), Labels{
		"job":    job,
		"family": family,
	})
}
