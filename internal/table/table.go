// Package table holds the pruned, in-memory form of a bronze table as Arrow
// record batches: it reads only the selected columns of a Parquet file, drops
// rows that are null in every column and writes the result back to Parquet.
package table

import (
	"context"
	"errors"
	"fmt"
	"io"

	"bronze/internal/failure"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// readBatch is the number of rows per Arrow record batch.
const readBatch = 64 * 1024

// Table is an ordered sequence of record batches sharing one schema.
// Callers must Release it.
type Table struct {
	Schema  *arrow.Schema
	Records []arrow.Record
}

// NumRows sums the rows of all batches.
func (t *Table) NumRows() int64 {
	var n int64
	for _, r := range t.Records {
		n += r.NumRows()
	}
	return n
}

// ColumnNames returns the field names in schema order.
func (t *Table) ColumnNames() []string {
	out := make([]string, t.Schema.NumFields())
	for i, f := range t.Schema.Fields() {
		out[i] = f.Name
	}
	return out
}

// Release drops the table's references to its batches.
func (t *Table) Release() {
	for _, r := range t.Records {
		r.Release()
	}
	t.Records = nil
}

// Read loads the named columns of the Parquet file at path. Columns keep
// source order. Any failure opening or decoding the file, including a column
// that does not exist, is a SourceReadError.
func Read(ctx context.Context, path string, columns []string) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table: no columns requested from %s", path)
	}

	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, failure.SourceRead(fmt.Sprintf("open %s", path), err)
	}
	defer pf.Close()

	indices := make([]int, len(columns))
	for i, name := range columns {
		idx := pf.MetaData().Schema.ColumnIndexByName(name)
		if idx < 0 {
			return nil, failure.SourceRead(fmt.Sprintf("%s: column %q not found", path, name), nil)
		}
		indices[i] = idx
	}

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: readBatch}, memory.DefaultAllocator)
	if err != nil {
		return nil, failure.SourceRead(fmt.Sprintf("arrow reader %s", path), err)
	}
	rr, err := fr.GetRecordReader(ctx, indices, nil)
	if err != nil {
		return nil, failure.SourceRead(fmt.Sprintf("select columns from %s", path), err)
	}
	defer rr.Release()

	t := &Table{Schema: rr.Schema()}
	for rr.Next() {
		rec := rr.Record()
		rec.Retain()
		t.Records = append(t.Records, rec)
	}
	if err := rr.Err(); err != nil && !errors.Is(err, io.EOF) {
		t.Release()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, failure.SourceRead(fmt.Sprintf("read %s", path), err)
	}
	return t, nil
}
