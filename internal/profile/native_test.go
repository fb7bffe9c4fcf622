package profile

import (
	"context"
	"errors"
	"math"
	"testing"

	"bronze/internal/datasource/parquetfile"
	"bronze/internal/failure"
	"bronze/internal/testutil"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
)

func openFixture[T any](t *testing.T, name string, rows []T) *parquetfile.File {
	t.Helper()
	path := testutil.WriteParquet(t, t.TempDir(), name, rows)
	f, err := parquetfile.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestNative_Scenario(t *testing.T) {
	t.Parallel()

	f := openFixture(t, "scenario.parquet", testutil.ScenarioRows())
	stats, err := Native(context.Background(), f)
	require.NoError(t, err)

	require.Equal(t, []ColumnStat{
		{Name: "a", NullCount: 60, DistinctCount: 1, NullFraction: 0.6, DistinctFraction: 0.01},
		{Name: "b", NullCount: 1, DistinctCount: 99, NullFraction: 0.01, DistinctFraction: 0.99},
		{Name: "c", NullCount: 5, DistinctCount: 20, NullFraction: 0.05, DistinctFraction: 0.2},
	}, stats)

	sel := Partition(stats, Thresholds{MaxNullFrac: 0.5, MaxUniqueFrac: 0.95})
	require.Equal(t, []string{"c"}, sel.Names())
}

func TestNative_ZeroRows(t *testing.T) {
	t.Parallel()

	f := openFixture(t, "empty.parquet", []testutil.ScenarioRow{})
	_, err := Native(context.Background(), f)
	require.True(t, failure.Is(err, failure.KindArithmetic), "got %v", err)
}

func TestNative_AllNullColumn(t *testing.T) {
	t.Parallel()

	type row struct {
		A *int64 `parquet:"a,optional"`
	}
	f := openFixture(t, "nulls.parquet", []row{{}, {}, {}, {}})
	stats, err := Native(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, ColumnStat{Name: "a", NullCount: 4, NullFraction: 1}, stats[0])
}

// fakeScanner replays fixed values per column.
type fakeScanner struct {
	cols   []string
	rows   int64
	values [][]parquet.Value
	err    error
}

func (f *fakeScanner) Columns() []string { return f.cols }
func (f *fakeScanner) NumRows() int64    { return f.rows }

func (f *fakeScanner) ScanColumns(_ context.Context, fn func(int, parquet.Value) error) error {
	for c, vs := range f.values {
		for _, v := range vs {
			if err := fn(c, v); err != nil {
				return err
			}
		}
	}
	return f.err
}

func TestNative_FoldsSignedZeros(t *testing.T) {
	t.Parallel()

	negZero := math.Copysign(0, -1)
	src := &fakeScanner{
		cols: []string{"d", "f"},
		rows: 4,
		values: [][]parquet.Value{
			{parquet.DoubleValue(negZero), parquet.DoubleValue(0), parquet.DoubleValue(1.5), parquet.NullValue()},
			{parquet.FloatValue(float32(negZero)), parquet.FloatValue(0), parquet.FloatValue(0), parquet.FloatValue(2)},
		},
	}
	stats, err := Native(context.Background(), src)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats[0].DistinctCount)
	require.EqualValues(t, 1, stats[0].NullCount)
	require.EqualValues(t, 2, stats[1].DistinctCount)
}

func TestNative_NaNIsOneNonNullValue(t *testing.T) {
	t.Parallel()

	nan32 := float32(math.NaN())
	other32 := math.Float32frombits(0x7fc00bad)
	src := &fakeScanner{
		cols: []string{"d", "f"},
		rows: 3,
		values: [][]parquet.Value{
			{parquet.DoubleValue(math.NaN()), parquet.DoubleValue(math.Float64frombits(0x7ff8000000000bad)), parquet.DoubleValue(1)},
			{parquet.FloatValue(nan32), parquet.FloatValue(other32), parquet.NullValue()},
		},
	}
	stats, err := Native(context.Background(), src)
	require.NoError(t, err)
	require.Zero(t, stats[0].NullCount)
	require.EqualValues(t, 2, stats[0].DistinctCount)
	require.EqualValues(t, 1, stats[1].NullCount)
	require.EqualValues(t, 1, stats[1].DistinctCount)
}

func TestNative_ScanErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := failure.SourceRead("corrupt page", errors.New("crc mismatch"))
	_, err := Native(context.Background(), &fakeScanner{cols: []string{"a"}, rows: 1, err: boom})
	require.ErrorIs(t, err, boom)
}
