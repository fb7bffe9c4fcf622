package table

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// DropAllNullRows returns a new table without the rows that are null in every
// column, and the number of rows removed. Surviving rows keep their relative
// order. The input table is left untouched; the caller releases both.
func DropAllNullRows(ctx context.Context, t *Table) (*Table, int64, error) {
	out := &Table{Schema: t.Schema, Records: make([]arrow.Record, 0, len(t.Records))}
	var dropped int64

	for _, rec := range t.Records {
		if err := ctx.Err(); err != nil {
			out.Release()
			return nil, 0, err
		}

		mask, n := keepMask(rec)
		if n == 0 {
			mask.Release()
			rec.Retain()
			out.Records = append(out.Records, rec)
			continue
		}

		filtered, err := compute.FilterRecordBatch(ctx, rec, mask, compute.DefaultFilterOptions())
		mask.Release()
		if err != nil {
			out.Release()
			return nil, 0, err
		}
		dropped += n
		if filtered.NumRows() == 0 {
			filtered.Release()
			continue
		}
		out.Records = append(out.Records, filtered)
	}
	return out, dropped, nil
}

// keepMask marks rows with at least one non-null value and counts the rows
// it excludes. NaN is a value, so a row of NaNs is kept.
func keepMask(rec arrow.Record) (*array.Boolean, int64) {
	b := array.NewBooleanBuilder(memory.DefaultAllocator)
	defer b.Release()

	rows := int(rec.NumRows())
	b.Reserve(rows)
	var excluded int64
	for i := 0; i < rows; i++ {
		keep := false
		for _, col := range rec.Columns() {
			if col.IsValid(i) {
				keep = true
				break
			}
		}
		if !keep {
			excluded++
		}
		b.UnsafeAppend(keep)
	}
	return b.NewBooleanArray(), excluded
}
