// Package profile computes per-column null and distinct statistics and decides
// which columns survive into the bronze layer.
//
// Two engines produce the same []ColumnStat: Native scans Parquet column
// chunks directly, SQL runs one aggregated query against a staged table. The
// accept/reject decision is engine independent (Partition).
package profile

import (
	"fmt"

	"bronze/internal/failure"
)

// Thresholds bound the accepted null and distinct fractions. Both are expected
// in [0,1] but are not checked.
type Thresholds struct {
	MaxNullFrac   float64
	MaxUniqueFrac float64
}

// ColumnStat holds the statistics of a single column. Fractions are relative
// to the row count of the whole source, computed once.
type ColumnStat struct {
	Name             string
	NullCount        int64
	DistinctCount    int64
	NullFraction     float64
	DistinctFraction float64
}

// NewColumnStat derives the fractions for a column. rowCount must be positive;
// zero fails with an ArithmeticError instead of dividing.
func NewColumnStat(name string, nullCount, distinctCount, rowCount int64) (ColumnStat, error) {
	if rowCount <= 0 {
		return ColumnStat{}, failure.Arithmetic(fmt.Sprintf("cannot profile column %q: source has %d rows", name, rowCount))
	}
	if nullCount < 0 || distinctCount < 0 || nullCount > rowCount || distinctCount > rowCount {
		return ColumnStat{}, fmt.Errorf("column %q: counts null=%d distinct=%d inconsistent with %d rows",
			name, nullCount, distinctCount, rowCount)
	}
	return ColumnStat{
		Name:             name,
		NullCount:        nullCount,
		DistinctCount:    distinctCount,
		NullFraction:     float64(nullCount) / float64(rowCount),
		DistinctFraction: float64(distinctCount) / float64(rowCount),
	}, nil
}

// Reason explains why a column was rejected. The zero value means selected.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonNull       Reason = "null"
	ReasonUnique     Reason = "unique"
	ReasonNullUnique Reason = "null+unique"
)

// Judge returns the rejection reason for s. A fraction exactly at its
// threshold is accepted.
func (t Thresholds) Judge(s ColumnStat) Reason {
	tooNull := s.NullFraction > t.MaxNullFrac
	tooUnique := s.DistinctFraction > t.MaxUniqueFrac
	switch {
	case tooNull && tooUnique:
		return ReasonNullUnique
	case tooNull:
		return ReasonNull
	case tooUnique:
		return ReasonUnique
	default:
		return ReasonNone
	}
}

// Decision pairs a column's statistics with its verdict.
type Decision struct {
	Stat   ColumnStat
	Reason Reason
}

// Selected reports whether the column is kept.
func (d Decision) Selected() bool { return d.Reason == ReasonNone }

// Selection is the accept/reject partition of a source's columns. All slices
// keep source column order.
type Selection struct {
	Decisions []Decision
	Selected  []ColumnStat
	Rejected  []Decision
}

// Partition applies t to every stat.
func Partition(stats []ColumnStat, t Thresholds) Selection {
	sel := Selection{
		Decisions: make([]Decision, 0, len(stats)),
		Selected:  make([]ColumnStat, 0, len(stats)),
	}
	for _, s := range stats {
		d := Decision{Stat: s, Reason: t.Judge(s)}
		sel.Decisions = append(sel.Decisions, d)
		if d.Selected() {
			sel.Selected = append(sel.Selected, s)
		} else {
			sel.Rejected = append(sel.Rejected, d)
		}
	}
	return sel
}

// Names returns the selected column names in source order.
func (s Selection) Names() []string {
	out := make([]string, len(s.Selected))
	for i, c := range s.Selected {
		out[i] = c.Name
	}
	return out
}

// RejectedFor counts rejected columns whose reason includes r. A column
// rejected for both reasons counts toward ReasonNull and ReasonUnique.
func (s Selection) RejectedFor(r Reason) int {
	n := 0
	for _, d := range s.Rejected {
		if d.Reason == r || (d.Reason == ReasonNullUnique && (r == ReasonNull || r == ReasonUnique)) {
			n++
		}
	}
	return n
}

// Require fails with a ConfigurationError when nothing was selected.
func (s Selection) Require() error {
	if len(s.Selected) == 0 {
		return failure.Configuration(
			fmt.Sprintf("no columns remain after filtering (%d rejected)", len(s.Rejected)), nil)
	}
	return nil
}
