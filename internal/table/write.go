package table

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/parquet-go/parquet-go"
)

// writeBatch is the number of rows handed to the Parquet writer per call.
const writeBatch = 4096

// Write stores t as a Snappy-compressed Parquet file at path, creating parent
// directories as needed. The file is written to a temporary sibling and
// renamed into place, so path either keeps its previous content or holds the
// complete new table.
//
// Pages are encoded with parquet-go, the same library that opens and scans
// source files, so every bronze file is itself a valid source. All columns are
// written as optional and keep the table's column order.
func Write(ctx context.Context, path string, t *Table) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	schema, err := parquetSchema(t.Schema)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := parquet.NewWriter(tmp, schema, parquet.Compression(&parquet.Snappy))
	for _, rec := range t.Records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeRecord(w, rec); err != nil {
			return fmt.Errorf("write rows: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish parquet file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move %s into place: %w", path, err)
	}
	return nil
}

// orderedGroup is a root node whose fields keep table order. parquet.Group
// alone lists its fields sorted by name.
type orderedGroup struct {
	parquet.Group
	fields []parquet.Field
}

func (g orderedGroup) Fields() []parquet.Field { return g.fields }

// parquetSchema maps an Arrow schema onto optional Parquet leaf columns.
func parquetSchema(s *arrow.Schema) (*parquet.Schema, error) {
	group := make(parquet.Group, s.NumFields())
	for _, f := range s.Fields() {
		if _, dup := group[f.Name]; dup {
			return nil, fmt.Errorf("table: duplicate column %q", f.Name)
		}
		leaf, err := leafNode(f.Type)
		if err != nil {
			return nil, fmt.Errorf("table: column %q: %w", f.Name, err)
		}
		group[f.Name] = parquet.Optional(leaf)
	}

	byName := make(map[string]parquet.Field, len(group))
	for _, f := range group.Fields() {
		byName[f.Name()] = f
	}
	fields := make([]parquet.Field, s.NumFields())
	for i, f := range s.Fields() {
		fields[i] = byName[f.Name]
	}
	return parquet.NewSchema("bronze", orderedGroup{Group: group, fields: fields}), nil
}

func leafNode(dt arrow.DataType) (parquet.Node, error) {
	switch dt.ID() {
	case arrow.BOOL:
		return parquet.Leaf(parquet.BooleanType), nil
	case arrow.INT8:
		return parquet.Int(8), nil
	case arrow.INT16:
		return parquet.Int(16), nil
	case arrow.INT32:
		return parquet.Int(32), nil
	case arrow.INT64:
		return parquet.Int(64), nil
	case arrow.UINT8:
		return parquet.Uint(8), nil
	case arrow.UINT16:
		return parquet.Uint(16), nil
	case arrow.UINT32:
		return parquet.Uint(32), nil
	case arrow.UINT64:
		return parquet.Uint(64), nil
	case arrow.FLOAT32:
		return parquet.Leaf(parquet.FloatType), nil
	case arrow.FLOAT64:
		return parquet.Leaf(parquet.DoubleType), nil
	case arrow.STRING, arrow.LARGE_STRING:
		return parquet.String(), nil
	case arrow.BINARY, arrow.LARGE_BINARY:
		return parquet.Leaf(parquet.ByteArrayType), nil
	case arrow.DATE32:
		return parquet.Date(), nil
	case arrow.TIMESTAMP:
		ts := dt.(*arrow.TimestampType)
		unit := parquet.Millisecond
		switch ts.Unit {
		case arrow.Microsecond:
			unit = parquet.Microsecond
		case arrow.Nanosecond:
			unit = parquet.Nanosecond
		}
		return parquet.TimestampAdjusted(unit, ts.TimeZone != ""), nil
	default:
		return nil, fmt.Errorf("arrow type %s has no parquet mapping", dt)
	}
}

// writeRecord converts rec row by row. Column c of the table is leaf column c
// of the schema; a present value has definition level 1, a null level 0.
func writeRecord(w *parquet.Writer, rec arrow.Record) error {
	cols := rec.Columns()
	n := int(rec.NumRows())
	rows := make([]parquet.Row, 0, min(n, writeBatch))

	for i := 0; i < n; i++ {
		row := make(parquet.Row, len(cols))
		for c, col := range cols {
			if col.IsNull(i) {
				row[c] = parquet.NullValue().Level(0, 0, c)
				continue
			}
			v, err := leafValue(col, i)
			if err != nil {
				return err
			}
			row[c] = v.Level(0, 1, c)
		}
		rows = append(rows, row)
		if len(rows) == cap(rows) {
			if _, err := w.WriteRows(rows); err != nil {
				return err
			}
			rows = rows[:0]
		}
	}
	if len(rows) > 0 {
		if _, err := w.WriteRows(rows); err != nil {
			return err
		}
	}
	return nil
}

// leafValue returns the physical Parquet value at row i of a non-null slot.
// Unsigned values keep their bit pattern in the signed physical type.
func leafValue(col arrow.Array, i int) (parquet.Value, error) {
	switch a := col.(type) {
	case *array.Boolean:
		return parquet.BooleanValue(a.Value(i)), nil
	case *array.Int8:
		return parquet.Int32Value(int32(a.Value(i))), nil
	case *array.Int16:
		return parquet.Int32Value(int32(a.Value(i))), nil
	case *array.Int32:
		return parquet.Int32Value(a.Value(i)), nil
	case *array.Int64:
		return parquet.Int64Value(a.Value(i)), nil
	case *array.Uint8:
		return parquet.Int32Value(int32(a.Value(i))), nil
	case *array.Uint16:
		return parquet.Int32Value(int32(a.Value(i))), nil
	case *array.Uint32:
		return parquet.Int32Value(int32(a.Value(i))), nil
	case *array.Uint64:
		return parquet.Int64Value(int64(a.Value(i))), nil
	case *array.Float32:
		return parquet.FloatValue(a.Value(i)), nil
	case *array.Float64:
		return parquet.DoubleValue(a.Value(i)), nil
	case *array.String:
		return parquet.ByteArrayValue([]byte(a.Value(i))), nil
	case *array.LargeString:
		return parquet.ByteArrayValue([]byte(a.Value(i))), nil
	case *array.Binary:
		return parquet.ByteArrayValue(a.Value(i)), nil
	case *array.LargeBinary:
		return parquet.ByteArrayValue(a.Value(i)), nil
	case *array.Date32:
		return parquet.Int32Value(int32(a.Value(i))), nil
	case *array.Timestamp:
		v := int64(a.Value(i))
		if a.DataType().(*arrow.TimestampType).Unit == arrow.Second {
			v *= 1000
		}
		return parquet.Int64Value(v), nil
	default:
		return parquet.Value{}, fmt.Errorf("unsupported arrow array %T", col)
	}
}
