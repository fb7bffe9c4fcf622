package storage

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoadBatches_Basic(t *testing.T) {
	t.Parallel()

	in := make(chan []any, 8)
	for i := 0; i < 7; i++ {
		in <- []any{i, "x"}
	}
	close(in)

	var calls int32
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		atomic.AddInt32(&calls, 1)
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(context.Background(), []string{"c1", "c2"}, in, 3, copyFn)
	if err != nil {
		t.Fatalf("LoadBatches error: %v", err)
	}
	if total != 7 {
		t.Fatalf("total rows %d, want 7", total)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("copyFn calls %d, want 3 (3+3+1)", got)
	}
}

func TestLoadBatches_EmptyInputNeverCopies(t *testing.T) {
	t.Parallel()

	in := make(chan []any)
	close(in)

	total, err := LoadBatches(context.Background(), []string{"c"}, in, 10,
		func(context.Context, []string, [][]any) (int64, error) {
			t.Fatal("copyFn called for empty input")
			return 0, nil
		})
	if err != nil || total != 0 {
		t.Fatalf("LoadBatches() = (%d, %v), want (0, nil)", total, err)
	}
}

func TestLoadBatches_InvalidArgs(t *testing.T) {
	t.Parallel()

	in := make(chan []any)
	copyFn := func(context.Context, []string, [][]any) (int64, error) { return 0, nil }

	if _, err := LoadBatches(context.Background(), nil, in, 0, copyFn); err == nil {
		t.Fatal("batchSize=0: want error")
	}
	if _, err := LoadBatches(context.Background(), nil, in, 1, nil); err == nil {
		t.Fatal("nil copyFn: want error")
	}
}

func TestLoadBatches_ErrorPropagation(t *testing.T) {
	t.Parallel()

	in := make(chan []any, 5)
	for i := 0; i < 5; i++ {
		in <- []any{i}
	}
	close(in)

	wantErr := errors.New("copy failed")
	var batches int
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		batches++
		if batches == 2 {
			return 0, wantErr
		}
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(context.Background(), []string{"c"}, in, 2, copyFn)
	if !errors.Is(err, wantErr) {
		t.Fatalf("want error %v, got %v", wantErr, err)
	}
	if total != 2 {
		t.Fatalf("total rows %d, want 2 (first batch only)", total)
	}
	if batches != 2 {
		t.Fatalf("copyFn calls %d, want 2", batches)
	}
}

func TestLoadBatches_ContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan []any) // never closed

	errCh := make(chan error, 1)
	go func() {
		_, err := LoadBatches(ctx, []string{"c"}, in, 2,
			func(context.Context, []string, [][]any) (int64, error) { return 0, nil })
		errCh <- err
	}()

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("LoadBatches did not return after context cancel")
	}
}

func TestLoadBatches_RejectsMisalignedRow(t *testing.T) {
	t.Parallel()

	in := make(chan []any, 3)
	in <- []any{1, "a"}
	in <- []any{2}
	in <- []any{3, "c"}
	close(in)

	var copied int
	total, err := LoadBatches(context.Background(), []string{"id", "name"}, in, 10,
		func(_ context.Context, _ []string, rows [][]any) (int64, error) {
			copied += len(rows)
			return int64(len(rows)), nil
		})
	if err == nil {
		t.Fatal("want error for row with 1 value and 2 columns")
	}
	if total != 0 || copied != 0 {
		t.Fatalf("total=%d copied=%d, want nothing copied", total, copied)
	}
}
