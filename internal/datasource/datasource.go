// Package datasource defines what the profiler needs to know about a tabular
// source before it reads any values.
package datasource

// Describer reports the shape of a source. Columns are flat and in schema
// order; NumRows is the row count every fraction is computed against.
type Describer interface {
	Columns() []string
	NumRows() int64
}
