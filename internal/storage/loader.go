package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// CopyFn abstracts a backend's bulk insert. Implementations insert rows
// (aligned to columns) and return the number of rows inserted. The rows slice
// is reused after the call returns.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains in, groups rows into batches of batchSize and hands each
// non-empty batch to copyFn. It returns the total reported by copyFn and the
// first error, or ctx.Err() when canceled.
//
// When columns is non-empty every row must have exactly len(columns) values;
// a misaligned row stops the load before it reaches the backend.
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	b := &batcher{
		columns: columns,
		copyFn:  copyFn,
		rows:    make([][]any, 0, batchSize),
		start:   time.Now(),
	}
	for {
		select {
		case <-ctx.Done():
			return b.total, ctx.Err()

		case row, ok := <-in:
			if !ok {
				err := b.flush(ctx)
				slog.Debug("loader: input closed", "rows", b.seen, "batches", b.batches, "total", b.total)
				return b.total, err
			}
			if len(columns) > 0 && len(row) != len(columns) {
				return b.total, fmt.Errorf("loader: row %d has %d values for %d columns", b.seen+1, len(row), len(columns))
			}
			b.seen++
			b.rows = append(b.rows, row)
			if len(b.rows) == batchSize {
				if err := b.flush(ctx); err != nil {
					return b.total, err
				}
			}
		}
	}
}

// batcher accumulates rows between flushes.
type batcher struct {
	columns []string
	copyFn  CopyFn
	rows    [][]any

	seen    int64
	total   int64
	batches int64
	start   time.Time
}

func (b *batcher) flush(ctx context.Context) error {
	if len(b.rows) == 0 {
		return nil
	}
	t0 := time.Now()
	n, err := b.copyFn(ctx, b.columns, b.rows)
	b.total += n
	b.rows = b.rows[:0]
	if err != nil {
		slog.Error("loader: copy failed", "batch", b.batches+1, "inserted", n, "total", b.total, "err", err)
		return err
	}
	b.batches++
	slog.Debug("loader: batch flushed",
		"batch", b.batches,
		"inserted", n,
		"total", b.total,
		"took", time.Since(t0).Truncate(time.Microsecond),
		"elapsed", time.Since(b.start).Truncate(time.Millisecond),
	)
	return nil
}
