package ddl

import gddl "bronze/internal/ddl"

// dialect picks the SQLite affinity for each logical type. Booleans are
// stored as 0/1 and timestamps as ISO-8601 text; BLOB columns have no
// affinity so staged values keep the type they were inserted with.
var dialect = gddl.Dialect{
	Types: map[string]string{
		gddl.TypeString:    "TEXT",
		gddl.TypeBigint:    "INTEGER",
		gddl.TypeBool:      "INTEGER",
		gddl.TypeDouble:    "REAL",
		gddl.TypeTimestamp: "TEXT",
		gddl.TypeBlob:      "BLOB",
		"decimal":          "NUMERIC",
		"numeric":          "NUMERIC",
	},
	Fallback: "TEXT",
}

// MapType maps a logical type into a SQLite declared type.
func MapType(kind string) string { return dialect.MapType(kind) }
