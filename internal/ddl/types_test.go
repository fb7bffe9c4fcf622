package ddl

import (
	"reflect"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	upper := func(s string) string { return strings.ToUpper(s) }
	got := Resolve("main.t", []Field{
		{Name: "id", Type: TypeBigint},
		{Name: "note", Type: TypeString, Nullable: true},
	}, upper)

	want := TableDef{
		FQN: "main.t",
		Columns: []ColumnDef{
			{Name: "id", SQLType: "BIGINT"},
			{Name: "note", SQLType: "STRING", Nullable: true},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve() = %+v, want %+v", got, want)
	}
}

func TestReportColumnNames(t *testing.T) {
	t.Parallel()

	got := ReportColumnNames()
	want := []string{
		"run_id", "source", "column_name", "null_count", "distinct_count",
		"null_fraction", "distinct_fraction", "selected", "reason", "profiled_at",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReportColumnNames() = %v, want %v", got, want)
	}
}

func TestUntyped(t *testing.T) {
	t.Parallel()

	for _, f := range Untyped([]string{"a", `we"ird`}) {
		if f.Type != TypeBlob || !f.Nullable {
			t.Fatalf("Untyped field %+v, want nullable blob", f)
		}
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":            TypeString,
		" VARCHAR ":   TypeString,
		"INTEGER":     TypeBigint,
		"int":         TypeBigint,
		"Real":        TypeDouble,
		"boolean":     TypeBool,
		"timestamptz": TypeTimestamp,
		"bytes":       TypeBlob,
		" Decimal ":   "decimal",
		TypeTimestamp: TypeTimestamp,
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDialectFallback(t *testing.T) {
	t.Parallel()

	d := Dialect{Types: map[string]string{TypeBigint: "INT8"}, Fallback: "CLOB"}
	if got := d.MapType("integer"); got != "INT8" {
		t.Fatalf("MapType(integer) = %q, want INT8", got)
	}
	if got := d.MapType("geometry"); got != "CLOB" {
		t.Fatalf("MapType(geometry) = %q, want CLOB", got)
	}
}
