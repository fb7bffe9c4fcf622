package failure

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestKindOfAndExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantCode int
	}{
		{"nil", nil, KindUnknown, 0},
		{"plain", errors.New("boom"), KindUnknown, 1},
		{"source", SourceRead("open x.parquet", os.ErrNotExist), KindSourceRead, 2},
		{"config", Configuration("no columns remain", nil), KindConfiguration, 3},
		{"arith", Arithmetic("row count is zero"), KindArithmetic, 4},
		{"wrapped", fmt.Errorf("run: %w", Arithmetic("row count is zero")), KindArithmetic, 4},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KindOf(tt.err); got != tt.wantKind {
				t.Fatalf("KindOf()=%v, want %v", got, tt.wantKind)
			}
			if got := ExitCode(tt.err); got != tt.wantCode {
				t.Fatalf("ExitCode()=%d, want %d", got, tt.wantCode)
			}
		})
	}
}

func TestError_UnwrapAndMessage(t *testing.T) {
	t.Parallel()

	err := SourceRead("open data.parquet", os.ErrNotExist)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("errors.Is(err, os.ErrNotExist)=false, want true")
	}
	if !Is(err, KindSourceRead) {
		t.Fatalf("Is(err, KindSourceRead)=false")
	}
	if Is(nil, KindSourceRead) {
		t.Fatalf("Is(nil, ...)=true, want false")
	}

	want := "SourceReadError: open data.parquet: " + os.ErrNotExist.Error()
	if got := err.Error(); got != want {
		t.Fatalf("Error()=%q, want %q", got, want)
	}

	if got, want := Configuration("no columns remain", nil).Error(), "ConfigurationError: no columns remain"; got != want {
		t.Fatalf("Error()=%q, want %q", got, want)
	}
}
