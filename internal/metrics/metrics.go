// Package metrics is a small, backend-agnostic facade for recording what a
// bronze run did: how long each step took, how many columns were kept or
// rejected, and how many rows were read, dropped and written.
//
// The global backend defaults to a no-op, so instrumentation is always safe to
// call. Concrete systems (Pushgateway, DogStatsD) live in subpackages and are
// installed with SetBackend.
package metrics

import "time"

// Metric names emitted by the helpers below.
const (
	StepTotal           = "bronze_step_total"
	StepDurationSeconds = "bronze_step_duration_seconds"
	ColumnsTotal        = "bronze_columns_total"
	RowsTotal           = "bronze_rows_total"
)

// Column kinds for RecordColumns.
const (
	ColumnsSelected       = "selected"
	ColumnsRejectedNull   = "rejected_null"
	ColumnsRejectedUnique = "rejected_unique"
)

// Row kinds for RecordRows.
const (
	RowsRead    = "read"
	RowsDropped = "dropped"
	RowsWritten = "written"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

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

// RecordStep counts one execution of step and records its duration, labelled
// with success or failure.
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

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordColumns adds n columns of the given kind (selected, rejected_null,
// rejected_unique). Non-positive n is ignored.
func RecordColumns(job, kind string, n int64) {
	if n <= 0 {
		return
	}
	backend.IncCounter(ColumnsTotal, float64(n), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordRows adds n rows of the given kind (read, dropped, written).
// Non-positive n is ignored.
func RecordRows(job, kind string, n int64) {
	if n <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(n), Labels{
		"job":  job,
		"kind": kind,
	})
}
