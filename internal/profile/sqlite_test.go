package profile

import (
	"context"
	"math"
	"testing"

	"bronze/internal/failure"
	"bronze/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestSQLite_AgreesWithNative(t *testing.T) {
	t.Parallel()

	f := openFixture(t, "scenario.parquet", testutil.ScenarioRows())

	native, err := Native(context.Background(), f)
	require.NoError(t, err)
	viaSQL, err := SQLite(context.Background(), f, SQLiteOptions{BatchSize: 7})
	require.NoError(t, err)
	require.Equal(t, native, viaSQL)
}

func TestSQLite_AgreesWithNativeOnNaN(t *testing.T) {
	t.Parallel()

	f := openFixture(t, "nan.parquet", testutil.NaNRows())

	native, err := Native(context.Background(), f)
	require.NoError(t, err)
	viaSQL, err := SQLite(context.Background(), f, SQLiteOptions{BatchSize: 2})
	require.NoError(t, err)

	want := []ColumnStat{
		{Name: "m", NullCount: 1, DistinctCount: 2, NullFraction: 0.2, DistinctFraction: 0.4},
		{Name: "d", NullCount: 0, DistinctCount: 3, NullFraction: 0, DistinctFraction: 0.6},
	}
	require.Equal(t, want, native)
	require.Equal(t, want, viaSQL)
}

func TestStageValue(t *testing.T) {
	t.Parallel()

	negZero := math.Copysign(0, -1)
	require.Equal(t, stageValue(0.0), stageValue(negZero))
	require.Equal(t, stageValue(math.NaN()), stageValue(math.Float64frombits(0x7ff8000000000bad)))
	require.NotEqual(t, stageValue(1.0), stageValue(2.0))
	require.Equal(t, int64(7), stageValue(int64(7)))
	require.Equal(t, "x", stageValue("x"))
	require.Nil(t, stageValue(nil))
}

type hostileRow struct {
	Weird *string  `parquet:"we\"ird; DROP TABLE x; --,optional"`
	Space *int64   `parquet:"Label With Space,optional"`
	Float *float64 `parquet:"score,optional"`
}

func TestSQLite_HostileColumnNames(t *testing.T) {
	t.Parallel()

	rows := []hostileRow{
		{Weird: testutil.Ptr("x"), Space: testutil.Ptr(int64(1)), Float: testutil.Ptr(0.5)},
		{Weird: testutil.Ptr("x"), Float: testutil.Ptr(0.0)},
		{Space: testutil.Ptr(int64(2))},
		{Weird: testutil.Ptr("y"), Space: testutil.Ptr(int64(2)), Float: testutil.Ptr(0.5)},
	}
	f := openFixture(t, "hostile.parquet", rows)

	viaSQL, err := SQLite(context.Background(), f, SQLiteOptions{})
	require.NoError(t, err)
	native, err := Native(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, native, viaSQL)

	byName := map[string]ColumnStat{}
	for _, s := range viaSQL {
		byName[s.Name] = s
	}
	require.EqualValues(t, 1, byName[`we"ird; DROP TABLE x; --`].NullCount)
	require.EqualValues(t, 2, byName[`we"ird; DROP TABLE x; --`].DistinctCount)
	require.EqualValues(t, 2, byName["Label With Space"].DistinctCount)
}

func TestSQLite_ZeroRows(t *testing.T) {
	t.Parallel()

	f := openFixture(t, "empty.parquet", []testutil.ScenarioRow{})
	_, err := SQLite(context.Background(), f, SQLiteOptions{})
	require.True(t, failure.Is(err, failure.KindArithmetic), "got %v", err)
}

// shortStreamer claims more rows than it delivers.
type shortStreamer struct{}

func (shortStreamer) Columns() []string { return []string{"a"} }
func (shortStreamer) NumRows() int64    { return 3 }

func (shortStreamer) StreamRows(ctx context.Context, out chan<- []any) error {
	select {
	case out <- []any{int64(1)}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestSQLite_RowCountMismatchIsSourceRead(t *testing.T) {
	t.Parallel()

	_, err := SQLite(context.Background(), shortStreamer{}, SQLiteOptions{})
	require.True(t, failure.Is(err, failure.KindSourceRead), "got %v", err)
}
