// Package parquetfile implements a local Parquet data source with the two
// access paths the profiler needs: per-column value scans straight from column
// chunk pages, and whole-row streaming.
//
// Only flat schemas are supported. A nested or repeated column makes Open fail
// with a SourceReadError since such a column has no single null/distinct
// profile.
package parquetfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"bronze/internal/datasource"
	"bronze/internal/failure"

	"github.com/parquet-go/parquet-go"
)

// scanBatch is the number of values read from a page per call.
const scanBatch = 1024

// File is an open Parquet file. It is not safe for concurrent scans.
type File struct {
	path    string
	f       *os.File
	pf      *parquet.File
	columns []string
}

var _ datasource.Describer = (*File)(nil)

// Open opens and describes the Parquet file at path.
//
// Behavior mirrors a plain local file source: a done ctx returns ctx.Err()
// without touching the filesystem; any filesystem or footer error is returned
// as a SourceReadError wrapping the cause (errors.Is(err, os.ErrNotExist)
// still works).
func Open(ctx context.Context, path string) (*File, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, failure.SourceRead(fmt.Sprintf("open %s", path), err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, failure.SourceRead(fmt.Sprintf("stat %s", path), err)
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		_ = f.Close()
		return nil, failure.SourceRead(fmt.Sprintf("read parquet footer %s", path), err)
	}

	fields := pf.Schema().Fields()
	cols := make([]string, 0, len(fields))
	for _, fld := range fields {
		if !fld.Leaf() || fld.Repeated() {
			_ = f.Close()
			return nil, failure.SourceRead(
				fmt.Sprintf("%s: column %q is nested or repeated; only flat columns are supported", path, fld.Name()), nil)
		}
		cols = append(cols, fld.Name())
	}

	return &File{path: path, f: f, pf: pf, columns: cols}, nil
}

// Path returns the path the file was opened from.
func (f *File) Path() string { return f.path }

// Columns returns the column names in schema order.
func (f *File) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// NumRows returns the row count recorded in the footer.
func (f *File) NumRows() int64 { return f.pf.NumRows() }

// Close releases the underlying file handle.
func (f *File) Close() error { return f.f.Close() }

// ScanColumns calls fn for every value of every column, row group by row
// group, column by column. Null values are delivered with IsNull() true.
// Values are only valid for the duration of the call.
func (f *File) ScanColumns(ctx context.Context, fn func(col int, v parquet.Value) error) error {
	buf := make([]parquet.Value, scanBatch)
	for rgi, rg := range f.pf.RowGroups() {
		if err := ctx.Err(); err != nil {
			return err
		}
		for col, chunk := range rg.ColumnChunks() {
			if err := scanChunk(chunk, col, buf, fn); err != nil {
				var readErr chunkReadError
				if errors.As(err, &readErr) {
					return failure.SourceRead(
						fmt.Sprintf("%s: row group %d column %q", f.path, rgi, f.columns[col]), readErr.err)
				}
				return err
			}
		}
	}
	return nil
}

// chunkReadError marks errors coming from the file rather than from fn.
type chunkReadError struct{ err error }

func (e chunkReadError) Error() string { return e.err.Error() }

func scanChunk(chunk parquet.ColumnChunk, col int, buf []parquet.Value, fn func(int, parquet.Value) error) error {
	pages := chunk.Pages()
	defer pages.Close()

	for {
		page, err := pages.ReadPage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return chunkReadError{err}
		}
		if err := scanPage(page, col, buf, fn); err != nil {
			parquet.Release(page)
			return err
		}
		parquet.Release(page)
	}
}

func scanPage(page parquet.Page, col int, buf []parquet.Value, fn func(int, parquet.Value) error) error {
	values := page.Values()
	for {
		n, err := values.ReadValues(buf)
		for _, v := range buf[:n] {
			if ferr := fn(col, v); ferr != nil {
				return ferr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return chunkReadError{err}
		}
	}
}

// StreamRows sends each row as []any aligned to Columns(). Values are
// converted to driver-friendly Go types (see GoValue). It returns ctx.Err()
// when ctx is done before the file is exhausted.
func (f *File) StreamRows(ctx context.Context, out chan<- []any) error {
	width := len(f.columns)
	buf := make([]parquet.Row, 256)

	for rgi, rg := range f.pf.RowGroups() {
		if err := f.streamRowGroup(ctx, rgi, rg, width, buf, out); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) streamRowGroup(ctx context.Context, rgi int, rg parquet.RowGroup, width int, buf []parquet.Row, out chan<- []any) error {
	rows := rg.Rows()
	defer rows.Close()

	for {
		n, err := rows.ReadRows(buf)
		for _, r := range buf[:n] {
			rec := make([]any, width)
			for _, v := range r {
				if c := v.Column(); c >= 0 && c < width {
					rec[c] = GoValue(v)
				}
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- rec:
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return failure.SourceRead(fmt.Sprintf("%s: read rows in row group %d", f.path, rgi), err)
		}
	}
}

// GoValue converts a Parquet value to a Go value that database/sql drivers
// accept. Byte arrays are copied since page buffers are reused.
func GoValue(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray:
		return string(v.ByteArray())
	default:
		// FixedLenByteArray, Int96.
		b := v.Bytes()
		out := make([]byte, len(b))
		copy(out, b)
		return out
	}
}
