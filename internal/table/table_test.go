package table

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"bronze/internal/datasource/parquetfile"
	"bronze/internal/failure"
	"bronze/internal/testutil"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
)

func readBack(t *testing.T, path string) ([]string, [][]any) {
	t.Helper()
	f, err := parquetfile.Open(context.Background(), path)
	require.NoError(t, err)
	defer f.Close()

	out := make(chan []any, f.NumRows()+1)
	require.NoError(t, f.StreamRows(context.Background(), out))
	close(out)
	var rows [][]any
	for r := range out {
		rows = append(rows, r)
	}
	return f.Columns(), rows
}

func TestRead_SelectedColumnsOnly(t *testing.T) {
	t.Parallel()

	path := testutil.WriteParquet(t, t.TempDir(), "scenario.parquet", testutil.ScenarioRows())

	tbl, err := Read(context.Background(), path, []string{"c"})
	require.NoError(t, err)
	defer tbl.Release()

	require.Equal(t, []string{"c"}, tbl.ColumnNames())
	require.EqualValues(t, 100, tbl.NumRows())
}

func TestRead_KeepsSourceOrder(t *testing.T) {
	t.Parallel()

	path := testutil.WriteParquet(t, t.TempDir(), "sparse.parquet", testutil.SparseRows())

	tbl, err := Read(context.Background(), path, []string{"id", "score"})
	require.NoError(t, err)
	defer tbl.Release()
	require.Equal(t, []string{"id", "score"}, tbl.ColumnNames())
}

func TestRead_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.WriteParquet(t, dir, "sparse.parquet", testutil.SparseRows())

	_, err := Read(context.Background(), path, []string{"id", "nope"})
	require.True(t, failure.Is(err, failure.KindSourceRead), "missing column: %v", err)

	_, err = Read(context.Background(), filepath.Join(dir, "missing.parquet"), []string{"id"})
	require.True(t, failure.Is(err, failure.KindSourceRead), "missing file: %v", err)

	_, err = Read(context.Background(), path, nil)
	require.Error(t, err)
}

func TestDropAllNullRows_SparseFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.WriteParquet(t, dir, "sparse.parquet", testutil.SparseRows())

	tbl, err := Read(context.Background(), path, []string{"id", "label", "score"})
	require.NoError(t, err)
	defer tbl.Release()

	kept, dropped, err := DropAllNullRows(context.Background(), tbl)
	require.NoError(t, err)
	defer kept.Release()

	require.EqualValues(t, 2, dropped)
	require.EqualValues(t, 3, kept.NumRows())
	require.EqualValues(t, 5, tbl.NumRows(), "input must not change")

	out := filepath.Join(dir, "nested", "bronze", "filtered.parquet")
	require.NoError(t, Write(context.Background(), out, kept))

	cols, rows := readBack(t, out)
	require.Equal(t, []string{"id", "label", "score"}, cols)
	require.Equal(t, [][]any{
		{int64(1), "one", 1.5},
		{nil, "three", nil},
		{int64(5), nil, 0.0},
	}, rows)
}

func TestDropAllNullRows_SubsetOfColumns(t *testing.T) {
	t.Parallel()

	path := testutil.WriteParquet(t, t.TempDir(), "sparse.parquet", testutil.SparseRows())

	// Restricted to id, rows 1-3 are all null.
	tbl, err := Read(context.Background(), path, []string{"id"})
	require.NoError(t, err)
	defer tbl.Release()

	kept, dropped, err := DropAllNullRows(context.Background(), tbl)
	require.NoError(t, err)
	defer kept.Release()
	require.EqualValues(t, 3, dropped)
	require.EqualValues(t, 2, kept.NumRows())
}

func buildRecord(t *testing.T, schema *arrow.Schema, vals []*int64) arrow.Record {
	t.Helper()
	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	ib := b.Field(0).(*array.Int64Builder)
	for _, v := range vals {
		if v == nil {
			ib.AppendNull()
		} else {
			ib.Append(*v)
		}
	}
	return b.NewRecord()
}

func TestDropAllNullRows_AcrossBatches(t *testing.T) {
	t.Parallel()

	schema := arrow.NewSchema([]arrow.Field{{Name: "v", Type: arrow.PrimitiveTypes.Int64, Nullable: true}}, nil)
	one, two, three := int64(1), int64(2), int64(3)

	tbl := &Table{Schema: schema, Records: []arrow.Record{
		buildRecord(t, schema, []*int64{&one, nil, &two}),
		buildRecord(t, schema, []*int64{nil, nil}),
		buildRecord(t, schema, []*int64{&three}),
	}}
	defer tbl.Release()

	kept, dropped, err := DropAllNullRows(context.Background(), tbl)
	require.NoError(t, err)
	defer kept.Release()

	require.EqualValues(t, 3, dropped)
	require.Len(t, kept.Records, 2, "a batch with no surviving rows is omitted")

	var got []int64
	for _, rec := range kept.Records {
		col := rec.Column(0).(*array.Int64)
		for i := 0; i < col.Len(); i++ {
			got = append(got, col.Value(i))
		}
	}
	require.Equal(t, []int64{1, 2, 3}, got)
}

func TestDropAllNullRows_Canceled(t *testing.T) {
	t.Parallel()

	schema := arrow.NewSchema([]arrow.Field{{Name: "v", Type: arrow.PrimitiveTypes.Int64, Nullable: true}}, nil)
	one := int64(1)
	tbl := &Table{Schema: schema, Records: []arrow.Record{buildRecord(t, schema, []*int64{&one})}}
	defer tbl.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := DropAllNullRows(ctx, tbl)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWrite_ReplacesAtomically(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := testutil.WriteParquet(t, dir, "scenario.parquet", testutil.ScenarioRows())
	out := filepath.Join(dir, "out", "filtered.parquet")

	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o755))
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))

	tbl, err := Read(context.Background(), src, []string{"c"})
	require.NoError(t, err)
	defer tbl.Release()
	require.NoError(t, Write(context.Background(), out, tbl))

	cols, rows := readBack(t, out)
	require.Equal(t, []string{"c"}, cols)
	require.Len(t, rows, 100)

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWrite_CanceledLeavesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	schema := arrow.NewSchema([]arrow.Field{{Name: "v", Type: arrow.PrimitiveTypes.Int64, Nullable: true}}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := filepath.Join(dir, "x.parquet")
	err := Write(ctx, out, &Table{Schema: schema})
	require.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(out)
	require.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestWrite_KeepsColumnOrderAndTypes(t *testing.T) {
	t.Parallel()

	ts := &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "zeta", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "alpha", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "mid", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "at", Type: ts, Nullable: true},
		{Name: "ok", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	b.Field(0).(*array.Int32Builder).AppendValues([]int32{7, 0}, []bool{true, false})
	b.Field(1).(*array.StringBuilder).AppendValues([]string{"x", ""}, []bool{true, false})
	b.Field(2).(*array.Float64Builder).AppendValues([]float64{math.NaN(), 0}, []bool{true, false})
	b.Field(3).(*array.TimestampBuilder).AppendValues([]arrow.Timestamp{1_700_000_000_000_000, 0}, []bool{true, false})
	b.Field(4).(*array.BooleanBuilder).AppendValues([]bool{true, false}, []bool{true, false})
	tbl := &Table{Schema: schema, Records: []arrow.Record{b.NewRecord()}}
	defer tbl.Release()

	out := filepath.Join(t.TempDir(), "typed.parquet")
	require.NoError(t, Write(context.Background(), out, tbl))

	cols, rows := readBack(t, out)
	require.Equal(t, []string{"zeta", "alpha", "mid", "at", "ok"}, cols)
	require.Len(t, rows, 2)
	require.Equal(t, int64(7), rows[0][0])
	require.Equal(t, "x", rows[0][1])
	require.True(t, math.IsNaN(rows[0][2].(float64)), "NaN must survive the round trip")
	require.Equal(t, int64(1_700_000_000_000_000), rows[0][3])
	require.Equal(t, true, rows[0][4])
	require.Equal(t, []any{nil, nil, nil, nil, nil}, rows[1])

	again, err := Read(context.Background(), out, cols)
	require.NoError(t, err)
	defer again.Release()
	require.Equal(t, cols, again.ColumnNames())
	require.True(t, arrow.TypeEqual(ts, again.Schema.Field(3).Type), "timestamp type: %s", again.Schema.Field(3).Type)
}

func TestWrite_OutputScansAsSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := testutil.WriteParquet(t, dir, "scenario.parquet", testutil.ScenarioRows())
	tbl, err := Read(context.Background(), src, []string{"a", "c"})
	require.NoError(t, err)
	defer tbl.Release()

	out := filepath.Join(dir, "bronze.parquet")
	require.NoError(t, Write(context.Background(), out, tbl))

	f, err := parquetfile.Open(context.Background(), out)
	require.NoError(t, err)
	defer f.Close()

	nulls := make([]int, 2)
	require.NoError(t, f.ScanColumns(context.Background(), func(col int, v parquet.Value) error {
		if v.IsNull() {
			nulls[col]++
		}
		return nil
	}))
	require.Equal(t, []int{60, 5}, nulls)
}

func TestDropAllNullRows_KeepsAllNaNRow(t *testing.T) {
	t.Parallel()

	path := testutil.WriteParquet(t, t.TempDir(), "nan.parquet", testutil.NaNRows())
	tbl, err := Read(context.Background(), path, []string{"m", "d"})
	require.NoError(t, err)
	defer tbl.Release()

	kept, dropped, err := DropAllNullRows(context.Background(), tbl)
	require.NoError(t, err)
	defer kept.Release()
	require.Zero(t, dropped, "NaN is a value, so a row of NaNs is not all-null")
	require.EqualValues(t, 5, kept.NumRows())
}

func TestWrite_UnsupportedTypeLeavesNothing(t *testing.T) {
	t.Parallel()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "l", Type: arrow.ListOf(arrow.PrimitiveTypes.Int64), Nullable: true},
	}, nil)
	out := filepath.Join(t.TempDir(), "sub", "x.parquet")
	require.ErrorContains(t, Write(context.Background(), out, &Table{Schema: schema}), `column "l"`)
	_, statErr := os.Stat(filepath.Dir(out))
	require.True(t, errors.Is(statErr, os.ErrNotExist), "no directory is created for a schema that cannot be written")
}
