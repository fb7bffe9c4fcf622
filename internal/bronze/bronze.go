// Package bronze runs the column profiler and filter: it profiles every column
// of a raw Parquet file, keeps the columns within the null and distinct
// thresholds, drops rows that are null in every kept column and writes the
// result as the bronze Parquet file.
//
// A run is linear and either completes or fails with one of the failure kinds.
// No output file is left behind on failure.
package bronze

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bronze/internal/datasource/parquetfile"
	"bronze/internal/failure"
	"bronze/internal/metrics"
	"bronze/internal/profile"
	"bronze/internal/storage"
	"bronze/internal/table"

	"github.com/google/uuid"
)

// Profiling engines.
const (
	EngineNative = "native"
	EngineSQLite = "sqlite"
)

// DefaultJob labels metrics when Options.Job is empty.
const DefaultJob = "bronze"

// Options describe one run.
type Options struct {
	Source     string
	Output     string
	Thresholds profile.Thresholds

	// Engine is EngineNative (default) or EngineSQLite.
	Engine string

	// Job labels metrics.
	Job string

	// Report receives one row per profiled column when Kind is set.
	Report storage.ReportTarget

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Summary describes a successful run.
type Summary struct {
	RunID        string
	Source       string
	Output       string
	InputRows    int64
	InputColumns int

	Selected []profile.ColumnStat
	Rejected []profile.Decision

	RowsBeforeDrop int64
	RowsDropped    int64
	RowsWritten    int64

	ReportRows int64
}

// SelectedNames returns the kept column names in source order.
func (s Summary) SelectedNames() []string {
	out := make([]string, len(s.Selected))
	for i, c := range s.Selected {
		out[i] = c.Name
	}
	return out
}

type runner struct {
	opt Options
	log *slog.Logger
	job string
}

// Run executes the profile, select, prune, drop and write steps. When a
// report target is configured the column decisions are stored after the
// output is written; a report failure is returned with the summary of the
// otherwise complete run.
func Run(ctx context.Context, opt Options) (Summary, error) {
	r := &runner{opt: opt, log: opt.Logger, job: opt.Job}
	if r.log == nil {
		r.log = slog.Default()
	}
	if r.job == "" {
		r.job = DefaultJob
	}
	switch opt.Engine {
	case "", EngineNative, EngineSQLite:
	default:
		return Summary{}, failure.Configuration(fmt.Sprintf("unknown profiling engine %q", opt.Engine), nil)
	}

	sum := Summary{RunID: uuid.NewString(), Source: opt.Source, Output: opt.Output}
	r.log = r.log.With("run_id", sum.RunID)

	stats, err := r.profile(ctx, &sum)
	if err != nil {
		return sum, err
	}

	sel := profile.Partition(stats, opt.Thresholds)
	sum.Selected = sel.Selected
	sum.Rejected = sel.Rejected
	r.logSelection(sel)
	metrics.RecordColumns(r.job, metrics.ColumnsSelected, int64(len(sel.Selected)))
	metrics.RecordColumns(r.job, metrics.ColumnsRejectedNull, int64(sel.RejectedFor(profile.ReasonNull)))
	metrics.RecordColumns(r.job, metrics.ColumnsRejectedUnique, int64(sel.RejectedFor(profile.ReasonUnique)))

	if err := sel.Require(); err != nil {
		return sum, err
	}

	if err := r.filter(ctx, sel.Names(), &sum); err != nil {
		return sum, err
	}

	if opt.Report.Kind != "" {
		n, err := r.report(ctx, sel, sum)
		sum.ReportRows = n
		if err != nil {
			return sum, err
		}
	}
	return sum, nil
}

// step times fn and records it as a metric.
func (r *runner) step(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStep(r.job, name, err, time.Since(start))
	return err
}

func (r *runner) profile(ctx context.Context, sum *Summary) ([]profile.ColumnStat, error) {
	var src *parquetfile.File
	err := r.step("describe", func() error {
		var err error
		src, err = parquetfile.Open(ctx, r.opt.Source)
		return err
	})
	if err != nil {
		return nil, err
	}
	defer src.Close()

	sum.InputRows = src.NumRows()
	sum.InputColumns = len(src.Columns())
	r.log.Info("source described", "source", r.opt.Source, "rows", sum.InputRows, "columns", sum.InputColumns)
	metrics.RecordRows(r.job, metrics.RowsRead, sum.InputRows)

	if sum.InputRows == 0 {
		return nil, failure.Arithmetic(fmt.Sprintf("%s has zero rows; null and distinct fractions are undefined", r.opt.Source))
	}

	var stats []profile.ColumnStat
	err = r.step("profile", func() error {
		var err error
		switch r.opt.Engine {
		case EngineSQLite:
			stats, err = profile.SQLite(ctx, src, profile.SQLiteOptions{})
		default:
			stats, err = profile.Native(ctx, src)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, s := range stats {
		r.log.Debug("column profiled", "column", s.Name,
			"null_fraction", s.NullFraction, "distinct_fraction", s.DistinctFraction)
	}
	return stats, nil
}

func (r *runner) logSelection(sel profile.Selection) {
	for _, d := range sel.Rejected {
		r.log.Info("column rejected", "column", d.Stat.Name, "reason", string(d.Reason),
			"null_fraction", d.Stat.NullFraction, "distinct_fraction", d.Stat.DistinctFraction)
	}
	r.log.Info("columns selected",
		"selected", len(sel.Selected),
		"rejected", len(sel.Rejected),
		"rejected_null", sel.RejectedFor(profile.ReasonNull),
		"rejected_unique", sel.RejectedFor(profile.ReasonUnique),
		"max_null_frac", r.opt.Thresholds.MaxNullFrac,
		"max_unique_frac", r.opt.Thresholds.MaxUniqueFrac,
	)
}

// filter re-reads the selected columns, drops all-null rows and writes the
// output.
func (r *runner) filter(ctx context.Context, columns []string, sum *Summary) error {
	var t *table.Table
	err := r.step("read", func() error {
		var err error
		t, err = table.Read(ctx, r.opt.Source, columns)
		return err
	})
	if err != nil {
		return err
	}
	defer t.Release()
	sum.RowsBeforeDrop = t.NumRows()

	var kept *table.Table
	err = r.step("drop", func() error {
		var err error
		kept, sum.RowsDropped, err = table.DropAllNullRows(ctx, t)
		return err
	})
	if err != nil {
		return fmt.Errorf("drop all-null rows: %w", err)
	}
	defer kept.Release()
	sum.RowsWritten = kept.NumRows()
	r.log.Info("all-null rows dropped", "before", sum.RowsBeforeDrop, "dropped", sum.RowsDropped)
	metrics.RecordRows(r.job, metrics.RowsDropped, sum.RowsDropped)

	err = r.step("write", func() error {
		return table.Write(ctx, r.opt.Output, kept)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", r.opt.Output, err)
	}
	metrics.RecordRows(r.job, metrics.RowsWritten, sum.RowsWritten)
	r.log.Info("bronze file written", "output", r.opt.Output, "rows", sum.RowsWritten, "columns", len(columns))
	return nil
}

func (r *runner) report(ctx context.Context, sel profile.Selection, sum Summary) (int64, error) {
	at := time.Now()
	rows := make([]storage.ReportRow, 0, len(sel.Decisions))
	for _, d := range sel.Decisions {
		rows = append(rows, storage.ReportRow{
			RunID:            sum.RunID,
			Source:           sum.Source,
			Column:           d.Stat.Name,
			NullCount:        d.Stat.NullCount,
			DistinctCount:    d.Stat.DistinctCount,
			NullFraction:     d.Stat.NullFraction,
			DistinctFraction: d.Stat.DistinctFraction,
			Selected:         d.Selected(),
			Reason:           string(d.Reason),
			ProfiledAt:       at,
		})
	}

	var n int64
	err := r.step("report", func() error {
		var err error
		n, err = storage.WriteReport(ctx, r.opt.Report, rows)
		return err
	})
	if err != nil {
		return n, err
	}
	r.log.Info("column report stored", "kind", r.opt.Report.Kind, "table", r.opt.Report.Table, "rows", n)
	return n, nil
}
