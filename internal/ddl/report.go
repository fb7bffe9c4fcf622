package ddl

// ReportFields is the layout of the column-profile report table. One row is
// written per source column per run.
var ReportFields = []Field{
	{Name: "run_id", Type: TypeString},
	{Name: "source", Type: TypeString},
	{Name: "column_name", Type: TypeString},
	{Name: "null_count", Type: TypeBigint},
	{Name: "distinct_count", Type: TypeBigint},
	{Name: "null_fraction", Type: TypeDouble},
	{Name: "distinct_fraction", Type: TypeDouble},
	{Name: "selected", Type: TypeBool},
	{Name: "reason", Type: TypeString, Nullable: true},
	{Name: "profiled_at", Type: TypeTimestamp},
}

// ReportColumnNames returns the report column names in table order.
func ReportColumnNames() []string {
	out := make([]string, len(ReportFields))
	for i, f := range ReportFields {
		out[i] = f.Name
	}
	return out
}

// Untyped returns fields for columns that keep values exactly as inserted.
// The staging table of the SQL profiling engine uses it.
func Untyped(columns []string) []Field {
	out := make([]Field, len(columns))
	for i, c := range columns {
		out[i] = Field{Name: c, Type: TypeBlob, Nullable: true}
	}
	return out
}
