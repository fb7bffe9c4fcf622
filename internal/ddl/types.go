// Package ddl defines a small, backend-agnostic model for SQL DDL. Column types
// are logical ("string", "bigint", "double", "bool", "timestamp", "blob");
// backend ddl packages map them to their dialect with MapType and render the
// CREATE TABLE statement.
package ddl

import "strings"

// Logical column types understood by every backend MapType.
const (
	TypeString    = "string"
	TypeBigint    = "bigint"
	TypeDouble    = "double"
	TypeBool      = "bool"
	TypeTimestamp = "timestamp"
	TypeBlob      = "blob"
)

// Normalize folds common spellings of a type onto the logical constants, e.g.
// "INTEGER" -> TypeBigint and "real" -> TypeDouble. Empty means TypeString.
// Unrecognized kinds are returned lowercased so dialects can still match them.
func Normalize(kind string) string {
	k := strings.ToLower(strings.TrimSpace(kind))
	switch k {
	case "", "text", "varchar", TypeString:
		return TypeString
	case "int", "integer", "int64", TypeBigint:
		return TypeBigint
	case "float", "real", "float64", TypeDouble:
		return TypeDouble
	case "boolean", TypeBool:
		return TypeBool
	case "datetime", "timestamptz", TypeTimestamp:
		return TypeTimestamp
	case "bytes", "binary", TypeBlob:
		return TypeBlob
	default:
		return k
	}
}

// Dialect maps normalized kinds to one backend's SQL types.
type Dialect struct {
	Types    map[string]string
	Fallback string
}

// MapType returns the dialect type for kind, or Fallback when unknown.
func (d Dialect) MapType(kind string) string {
	if t, ok := d.Types[Normalize(kind)]; ok {
		return t
	}
	return d.Fallback
}

// ColumnDef describes a single column.
//
// Fields:
//   - Name: column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, TIMESTAMPTZ)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression (e.g., CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the fully-qualified table name (FQN) and an ordered list of
// columns. The FQN is expected in dotted form (e.g., "schema.table") and is
// quoted by renderers as needed.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Field is a column with a logical type, before dialect mapping.
type Field struct {
	Name     string
	Type     string
	Nullable bool
}

// Resolve maps fields to a TableDef using a backend's MapType.
func Resolve(fqn string, fields []Field, mapType func(string) string) TableDef {
	cols := make([]ColumnDef, len(fields))
	for i, f := range fields {
		cols[i] = ColumnDef{Name: f.Name, SQLType: mapType(f.Type), Nullable: f.Nullable}
	}
	return TableDef{FQN: fqn, Columns: cols}
}
