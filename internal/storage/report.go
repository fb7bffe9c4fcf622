package storage

import (
	"context"
	"fmt"
	"time"

	"bronze/internal/ddl"
)

// DefaultReportBatch is the number of report rows per CopyFrom call.
const DefaultReportBatch = 500

// ReportRow is one column decision of one run.
type ReportRow struct {
	RunID            string
	Source           string
	Column           string
	NullCount        int64
	DistinctCount    int64
	NullFraction     float64
	DistinctFraction float64
	Selected         bool
	Reason           string
	ProfiledAt       time.Time
}

// Values returns the row aligned to ddl.ReportColumnNames. An empty reason is
// stored as NULL.
func (r ReportRow) Values() []any {
	var reason any
	if r.Reason != "" {
		reason = r.Reason
	}
	return []any{
		r.RunID,
		r.Source,
		r.Column,
		r.NullCount,
		r.DistinctCount,
		r.NullFraction,
		r.DistinctFraction,
		r.Selected,
		reason,
		r.ProfiledAt.UTC(),
	}
}

// ReportTarget says where report rows go.
type ReportTarget struct {
	Kind  string
	DSN   string
	Table string
}

// WriteReport creates the report table if needed and appends rows to it. The
// table name is normalized with NormalizeIdent.
func WriteReport(ctx context.Context, target ReportTarget, rows []ReportRow) (int64, error) {
	table := NormalizeIdent(target.Table)
	if table == "" {
		return 0, fmt.Errorf("report: table name %q is empty after normalization", target.Table)
	}
	cols := ddl.ReportColumnNames()

	repo, err := New(ctx, Config{Kind: target.Kind, DSN: target.DSN, Table: table, Columns: cols})
	if err != nil {
		return 0, fmt.Errorf("report: open %s: %w", target.Kind, err)
	}
	defer repo.Close()

	if err := EnsureTable(ctx, target.Kind, repo, table, ddl.ReportFields); err != nil {
		return 0, fmt.Errorf("report: ensure table %s: %w", table, err)
	}

	in := make(chan []any, len(rows))
	for _, r := range rows {
		in <- r.Values()
	}
	close(in)

	n, err := LoadBatches(ctx, cols, in, DefaultReportBatch, repo.CopyFrom)
	if err != nil {
		return n, fmt.Errorf("report: load %s: %w", table, err)
	}
	return n, nil
}
