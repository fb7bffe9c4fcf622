// Package testutil holds fixtures shared by package tests: Parquet files with
// known null and distinct profiles.
package testutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// WriteParquet writes rows to dir/name using the struct schema of T and
// returns the full path. Pointer fields become optional columns.
func WriteParquet[T any](tb testing.TB, dir, name string, rows []T) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create %s: %v", path, err)
	}
	w := parquet.NewGenericWriter[T](f)
	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			tb.Fatalf("write rows: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		tb.Fatalf("close %s: %v", path, err)
	}
	return path
}

// ScenarioRow has three columns with distinct profiles over ScenarioRows:
//
//	a: 60% null                      -> rejected for nulls at 0.5
//	b:  1% null, 99% distinct        -> rejected for uniqueness at 0.95
//	c:  5% null, 20% distinct        -> selected
type ScenarioRow struct {
	A *string `parquet:"a,optional"`
	B *int64  `parquet:"b,optional"`
	C *string `parquet:"c,optional"`
}

// ScenarioRows returns 100 rows matching the ScenarioRow profile.
func ScenarioRows() []ScenarioRow {
	rows := make([]ScenarioRow, 100)
	for i := range rows {
		if i >= 60 {
			rows[i].A = Ptr("x")
		}
		if i != 0 {
			rows[i].B = Ptr(int64(i))
		}
		if i >= 5 {
			rows[i].C = Ptr(fmt.Sprintf("c%02d", i%20))
		}
	}
	return rows
}

// SparseRow is used for all-null row removal: rows 1 and 3 are null in every
// column.
type SparseRow struct {
	ID    *int64   `parquet:"id,optional"`
	Label *string  `parquet:"label,optional"`
	Score *float64 `parquet:"score,optional"`
}

// SparseRows returns 5 rows; rows 1 and 3 are entirely null.
func SparseRows() []SparseRow {
	return []SparseRow{
		{ID: Ptr(int64(1)), Label: Ptr("one"), Score: Ptr(1.5)},
		{},
		{ID: nil, Label: Ptr("three"), Score: nil},
		{},
		{ID: Ptr(int64(5)), Label: nil, Score: Ptr(-0.0)},
	}
}

// NaNRow has float columns where NaN is a present value, not a null.
type NaNRow struct {
	M *float64 `parquet:"m,optional"`
	D *float64 `parquet:"d,optional"`
}

// NaNRows returns 5 rows:
//
//	m: NaN, NaN (other payload), 1, null, NaN  -> 1 null, 2 distinct
//	d: 1,   1,                   2, NaN,  NaN  -> 0 null, 3 distinct
//
// The last row is NaN in every column and is not all-null.
func NaNRows() []NaNRow {
	nan := math.NaN()
	other := math.Float64frombits(0x7ff8000000000bad)
	return []NaNRow{
		{M: Ptr(nan), D: Ptr(1.0)},
		{M: Ptr(other), D: Ptr(1.0)},
		{M: Ptr(1.0), D: Ptr(2.0)},
		{M: nil, D: Ptr(nan)},
		{M: Ptr(nan), D: Ptr(nan)},
	}
}
