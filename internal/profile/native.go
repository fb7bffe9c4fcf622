package profile

import (
	"context"
	"encoding/binary"
	"math"

	"bronze/internal/datasource"
	"bronze/internal/failure"

	"github.com/parquet-go/parquet-go"
	"github.com/zeebo/xxh3"
)

// ColumnScanner is the source side of the native engine. It is implemented by
// parquetfile.File.
type ColumnScanner interface {
	datasource.Describer
	// ScanColumns visits every value of every column exactly once.
	ScanColumns(ctx context.Context, fn func(col int, v parquet.Value) error) error
}

// Native profiles every column of src in a single scan. Distinct values are
// tracked as 128-bit xxh3 digests, so memory grows with the number of distinct
// values rather than their size.
func Native(ctx context.Context, src ColumnScanner) ([]ColumnStat, error) {
	rows := src.NumRows()
	if rows == 0 {
		return nil, failure.Arithmetic("source has zero rows; null and distinct fractions are undefined")
	}

	cols := src.Columns()
	nulls := make([]int64, len(cols))
	seen := make([]map[xxh3.Uint128]struct{}, len(cols))
	for i := range seen {
		seen[i] = make(map[xxh3.Uint128]struct{})
	}

	err := src.ScanColumns(ctx, func(col int, v parquet.Value) error {
		if v.IsNull() {
			nulls[col]++
			return nil
		}
		seen[col][valueKey(v)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats := make([]ColumnStat, len(cols))
	for i, name := range cols {
		s, err := NewColumnStat(name, nulls[i], int64(len(seen[i])), rows)
		if err != nil {
			return nil, err
		}
		stats[i] = s
	}
	return stats, nil
}

// valueKey hashes the physical representation of v. Floating point zeros are
// folded so that -0 and +0 count as one value, matching SQL equality, and
// every NaN payload hashes alike so NaN counts as one non-null value.
func valueKey(v parquet.Value) xxh3.Uint128 {
	switch v.Kind() {
	case parquet.Float:
		if f := v.Float(); f == 0 || f != f {
			return xxh3.Hash128(binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(foldZeroNaN(float64(f))))))
		}
	case parquet.Double:
		if f := v.Double(); f == 0 || f != f {
			return xxh3.Hash128(binary.LittleEndian.AppendUint64(nil, math.Float64bits(foldZeroNaN(f))))
		}
	}
	return xxh3.Hash128(v.Bytes())
}

// foldZeroNaN maps a zero of either sign to +0 and any NaN to math.NaN().
// Other values are not expected.
func foldZeroNaN(f float64) float64 {
	if math.IsNaN(f) {
		return math.NaN()
	}
	return 0
}
