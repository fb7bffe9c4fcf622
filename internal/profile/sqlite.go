package profile

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"bronze/internal/datasource"
	"bronze/internal/failure"
	"bronze/internal/storage"
	"bronze/internal/storage/sqlite"

	"golang.org/x/sync/errgroup"
)

// RowStreamer is the source side of the SQLite engine. It is implemented by
// parquetfile.File.
type RowStreamer interface {
	datasource.Describer
	// StreamRows sends one []any per row, aligned to Columns, and returns when
	// the source is exhausted or ctx is done. It does not close out.
	StreamRows(ctx context.Context, out chan<- []any) error
}

const (
	stageDSN   = ":memory:"
	stageTable = "bronze_stage"
)

// SQLiteOptions tune the staging load.
type SQLiteOptions struct {
	// BatchSize is the number of rows per INSERT transaction. Default 5000.
	BatchSize int
}

// SQLite stages src into an in-memory SQLite table and profiles it with one
// aggregated query (see SQL). The staging database lives only for the call.
func SQLite(ctx context.Context, src RowStreamer, opt SQLiteOptions) ([]ColumnStat, error) {
	if src.NumRows() == 0 {
		return nil, failure.Arithmetic("source has zero rows; null and distinct fractions are undefined")
	}
	batch := opt.BatchSize
	if batch <= 0 {
		batch = 5000
	}

	cols := src.Columns()
	repo, closeFn, err := sqlite.NewRepository(ctx, sqlite.Config{
		DSN:     stageDSN,
		Table:   stageTable,
		Columns: cols,
	})
	if err != nil {
		return nil, fmt.Errorf("open staging db: %w", err)
	}
	defer closeFn()

	if err := repo.CreateUntypedTable(ctx); err != nil {
		return nil, fmt.Errorf("create staging table: %w", err)
	}

	staged, err := stage(ctx, src, repo, batch)
	if err != nil {
		return nil, err
	}
	if staged != src.NumRows() {
		return nil, failure.SourceRead(
			fmt.Sprintf("staged %d rows, source metadata reports %d", staged, src.NumRows()), nil)
	}

	return SQL(ctx, repo.DB(), stageTable, cols)
}

// stage runs a reader goroutine and the batched loader concurrently. The
// bounded channel keeps at most one batch plus the buffer in memory.
func stage(ctx context.Context, src RowStreamer, repo *sqlite.Repository, batch int) (int64, error) {
	g, gctx := errgroup.WithContext(ctx)
	rows := make(chan []any, batch)

	g.Go(func() error {
		defer close(rows)
		return src.StreamRows(gctx, rows)
	})

	var loaded int64
	g.Go(func() error {
		n, err := storage.LoadBatches(gctx, src.Columns(), rows, batch, stageCopy(repo.CopyFrom))
		loaded = n
		if err != nil {
			return fmt.Errorf("stage rows: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return loaded, err
	}
	return loaded, nil
}

// stageCopy rewrites each batch with stageValue before inserting it.
func stageCopy(copyFn storage.CopyFn) storage.CopyFn {
	return func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		for _, row := range rows {
			for i, v := range row {
				row[i] = stageValue(v)
			}
		}
		return copyFn(ctx, columns, rows)
	}
}

// stageValue binds floats as the 8 bytes of their bit pattern. SQLite stores
// a NaN REAL as NULL, which would count it as missing. Both zeros fold to +0
// and every NaN to a single payload, so BLOB equality matches the native
// engine: NaN is a value, and all NaNs are one distinct value.
func stageValue(v any) any {
	f, ok := v.(float64)
	if !ok {
		return v
	}
	switch {
	case f == 0:
		f = 0
	case math.IsNaN(f):
		f = math.NaN()
	}
	return binary.LittleEndian.AppendUint64(nil, math.Float64bits(f))
}
